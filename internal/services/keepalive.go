package services

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// StartKeepAlive pings SITE_URL every 10 minutes so free-tier hosts don't
// idle the process out. Failures are logged and otherwise ignored; the
// ping is never part of a request path.
func StartKeepAlive() *cron.Cron {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		log.Println("SITE_URL not set, keep-alive ping disabled")
		return nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	c := cron.New()
	c.AddFunc("@every 10m", func() {
		resp, err := client.Get(siteURL)
		if err != nil {
			log.Printf("Keep-alive ping failed: %v", err)
			return
		}
		resp.Body.Close()
	})
	c.Start()
	log.Printf("Keep-alive ping started for %s", siteURL)
	return c
}
