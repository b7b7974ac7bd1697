package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"

	scout "github.com/scoutlabs/scout-go"
	"github.com/scoutlabs/scout-go/adapters"
)

// Simulates one page view against a running collector. Cookies live in a
// JSON file so re-running shows the returning-visitor path (same browser
// id, growing session view count).
func main() {
	base := pflag.String("collector", "http://127.0.0.1:9292", "collector base URL")
	cookieFile := pflag.String("cookies", "scout_cookies.json", "cookie jar file")
	dnt := pflag.Bool("dnt", false, "simulate a Do-Not-Track visitor")
	pflag.Parse()

	perf := adapters.NewBufferedPerformanceSource()
	// Buffered before the tracker subscribes, like an early resource load.
	perf.Emit(adapters.PerformanceRecord{
		Name:      "https://example.com/app.css",
		EntryType: "resource",
		StartTime: 12,
		Duration:  38,
	})

	config := scout.Config{
		TrackingEndpoint: *base + "/api/v1/analytics",
		ErrorEndpoint:    *base + "/api/v1/errors",
		PageURL:          "https://example.com/page1.html?utm=demo#section",
		PageTitle:        "Page One",
		FlushInterval:    5 * time.Second,
	}
	config.Adapters.Environment = &adapters.StaticEnvironmentAdapter{DNT: *dnt, Secure: true}
	config.Adapters.Cookies = adapters.NewFileCookieAdapter(*cookieFile, nil)
	config.Adapters.Performance = perf
	config.Adapters.Logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelDebug)

	tracker, err := scout.New(config)
	if err != nil {
		log.Fatal(err)
	}
	if err := tracker.Start(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("browser identity: %+v\n", tracker.BrowserIdentity())
	fmt.Printf("session identity: %+v\n", tracker.SessionIdentity())

	// A couple of live performance records after subscription.
	perf.Emit(adapters.PerformanceRecord{
		Name:      "https://example.com/app.js",
		EntryType: "resource",
		StartTime: 45,
		Duration:  102,
	})
	perf.Emit(adapters.PerformanceRecord{
		Name:      "first-contentful-paint",
		EntryType: "paint",
		StartTime: 180,
	})

	tracker.Unload()
	fmt.Println("page view submitted")
}
