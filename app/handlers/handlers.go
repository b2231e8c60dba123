package handlers

import (
	"io"
	"net/http"
)

// HandleRobotsTXT keeps crawlers out of the API.
func HandleRobotsTXT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	data := []string{
		"User-agent: *",
		"Disallow: /api/",
		"Disallow: /debug/",
	}
	for _, line := range data {
		io.WriteString(w, line+"\r\n")
	}
}
