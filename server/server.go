package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"rarefeed/db"
	"rarefeed/feeds"
	"rarefeed/render"
)

type ServerConfig struct {

	// The hostname to use for the server
	Hostname string

	// The reader to use for feed queries
	Reader *db.Reader

	// Broadcast channel to pass refresh events to SSE clients
	Broadcaster *Broadcaster

	// Published feeds by id
	Feeds map[string]feeds.Feed

	// Directory holding the JSON snapshots
	DataDir string

	// Loader for the server-rendered card page
	Loader *render.Loader
}

const pageCacheKey = "page"

// Returns a fiber.App instance to be used as an HTTP server for the rarefeed service
func Server(config *ServerConfig) *fiber.App {

	bc := config.Broadcaster

	// Rendered page cache, the feed only changes when the updater runs
	pageCache := gocache.New(time.Minute, 5*time.Minute)

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Cache-Control",
	}))

	// Cache snapshot responses, never the SSE stream or the page
	// (the page has its own cache keyed on the loader result)
	app.Use(cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			if strings.HasSuffix(c.Path(), "/sse") {
				return true
			}
			return !strings.HasPrefix(c.Path(), "/data")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Get URL with query string to use as cache key
			return c.Request().URI().String()
		},
		Expiration: time.Minute,
	}))

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Server-rendered card page
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")

		if cached, ok := pageCache.Get(pageCacheKey); ok {
			return c.Send(cached.([]byte))
		}

		page := config.Loader.Load(c.Context())

		var buf bytes.Buffer
		if err := page.Render(&buf); err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error rendering page")
			return c.Status(500).SendString("Error rendering page")
		}

		// Only cache fully loaded pages so errors recover quickly
		if page.Status == "" {
			pageCache.Set(pageCacheKey, buf.Bytes(), gocache.DefaultExpiration)
		}

		return c.Send(buf.Bytes())
	})

	// Snapshot documents for the static renderer and API consumers
	for _, name := range []string{"rares.json", "rares_top.json"} {
		name := name
		app.Get("/data/"+name, func(c *fiber.Ctx) error {
			c.Set("Cache-Control", "no-store")
			c.Set("Content-Type", "application/json")
			return c.SendFile(filepath.Join(config.DataDir, name))
		})
	}

	// List the published feeds
	app.Get("/api/feeds", func(c *fiber.Ctx) error {
		list := []map[string]interface{}{}
		for _, feed := range config.Feeds {
			list = append(list, map[string]interface{}{
				"id":          feed.Id,
				"displayName": feed.DisplayName,
				"description": feed.Description,
				"minDays":     feed.MinDays,
			})
		}
		return c.JSON(list)
	})

	app.Get("/api/feed", func(c *fiber.Ctx) error {
		// Get the feed query parameters and parse the limit
		feedId := c.Query("feed", "all")
		cursor := c.Query("cursor", "")
		limit, err := strconv.ParseInt(c.Query("limit", "20"), 0, 32)
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}

		log.WithFields(log.Fields{
			"feed":   feedId,
			"cursor": cursor,
			"limit":  limit,
		}).Info("Generate feed page with parameters")

		if feed, ok := config.Feeds[feedId]; ok {
			items, err := feed.Algorithm(config.Reader, cursor, int(limit))
			if err != nil {
				fmt.Println("Error calling algorithm", err)
				return c.Status(500).SendString("Error calling algorithm")
			}
			return c.JSON(items)
		}

		return c.Status(400).SendString("Invalid feed")
	})

	app.Delete("/dashboard/refresh/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(200).SendString("OK")
	})

	app.Get("/dashboard/refresh/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		refreshChannel := bc.AddClient(key)
		aliveChan := time.NewTicker(5 * time.Second)

		defer aliveChan.Stop()

		// Cleanup function
		cleanup := func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			bc.RemoveClient(key)
		}

		// Use StreamWriter to manage SSE streaming
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cleanup()

			// Send initial event with client key
			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			// Start streaming loop
			for {
				select {
				case <-aliveChan.C:
					// Send keep-alive pings
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-refreshChannel:
					if !ok {
						log.Warnf("Refresh channel closed for client %s", key)
						return
					}
					jsonEvent, err := json.Marshal(event)
					if err != nil {
						log.Errorf("Error marshalling refresh event for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: feed-refreshed\ndata: %s\n\n", jsonEvent); err != nil {
						log.Warnf("Failed to send refresh event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush refresh event for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}
