/*

package dbnotify provides a backchannel from the database to tell every
server instance that a round's answers or finalizations changed, so cached
rounds and reports can be dropped.

Triggers installed by state.Schema publish on "<table>_changes".
*/

package dbnotify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ts4z/shortlist/model"
)

const (
	sleepOnErrorTime = 5 * time.Second
)

type NotificationEvent struct {
	Table string
	Round model.RoundID
}

// CacheStorage is anything holding data about a round that may go stale.
type CacheStorage interface {
	CacheInvalidate(ctx context.Context, round model.RoundID)
}

type Consumer interface {
	TableName() string
	Consume(ctx context.Context, event *NotificationEvent)
}

// Invalidator is a Consumer that drops every cache it was given.
type Invalidator struct {
	tableName string
	caches    []CacheStorage
}

func NewInvalidator(tableName string, caches ...CacheStorage) *Invalidator {
	return &Invalidator{tableName: tableName, caches: caches}
}

func (iv *Invalidator) TableName() string {
	return iv.tableName
}

func (iv *Invalidator) Consume(ctx context.Context, event *NotificationEvent) {
	for _, c := range iv.caches {
		c.CacheInvalidate(ctx, event.Round)
	}
}

type DBNotifyListener struct {
	db                  *sql.DB
	tableNameToConsumer map[string]Consumer
}

func NewDBNotifyListener(db *sql.DB, consumers ...Consumer) (*DBNotifyListener, error) {
	m := make(map[string]Consumer)
	for _, c := range consumers {
		tableName := c.TableName()
		if _, exists := m[tableName]; exists {
			return nil, fmt.Errorf("duplicate consumer for table %s", tableName)
		}
		m[tableName] = c
	}

	return &DBNotifyListener{db: db, tableNameToConsumer: m}, nil
}

// Dispatch hands event to the consumer for its table.
func (cl *DBNotifyListener) Dispatch(ctx context.Context, event *NotificationEvent) {
	consumer, ok := cl.tableNameToConsumer[event.Table]
	if !ok {
		log.Printf("no listener for table %s", event.Table)
		return
	}
	consumer.Consume(ctx, event)
}

// Listen blocks until ctx is done or the connection fails.
func (cl *DBNotifyListener) Listen(ctx context.Context) error {
	conn, err := cl.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	var pgxConn *stdlib.Conn
	err = conn.Raw(func(driverConn any) error {
		pgxConn = driverConn.(*stdlib.Conn)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to get pgx connection: %w", err)
	}

	for table := range cl.tableNameToConsumer {
		channel := fmt.Sprintf("%s_changes", table)
		if _, err := pgxConn.Conn().Exec(ctx, fmt.Sprintf("LISTEN %s", channel)); err != nil {
			return fmt.Errorf("failed to listen on channel %s: %w", channel, err)
		}
	}

	for {
		var notification *pgconn.Notification
		if nf, err := pgxConn.Conn().WaitForNotification(ctx); err == nil {
			notification = nf
		} else {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("error waiting for notification: %w", err)
		}

		event := &NotificationEvent{}
		if err := json.Unmarshal([]byte(notification.Payload), event); err != nil {
			log.Printf("can't unmarshal notification payload '%s': %v", notification.Payload, err)
			time.Sleep(sleepOnErrorTime)
			continue
		}
		log.Printf("db notification: %s changed in round %s", event.Table, event.Round)
		cl.Dispatch(ctx, event)
	}
}

// ListenForever restarts Listen after failures until ctx is done.
func (cl *DBNotifyListener) ListenForever(ctx context.Context) {
	for {
		err := cl.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("db notification listener stopped: %v; restarting", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepOnErrorTime):
		}
	}
}
