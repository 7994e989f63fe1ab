package webserver

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// NewApp serves the built web UI from dir, falling back to index.html for client-side routes
func NewApp(dir string, apiURL string, accessLog io.Writer) (*fiber.App, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("web directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("web directory: %s is not a directory", dir)
	}
	if accessLog == nil {
		accessLog = os.Stdout
	}

	webContent := os.DirFS(dir)

	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(logger.New(logger.Config{
		Format: "${time} WEB ${status} ${method} ${path} ${latency}\n",
		Output: accessLog,
	}))
	app.Use(cors.New())

	// API config endpoint, served before the static file handler
	app.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"apiUrl": apiURL,
		})
	})

	app.Get("*", func(c *fiber.Ctx) error {
		p := c.Path()
		if p == "/" {
			p = "/index.html"
		}

		// fs.FS paths are slash-separated and must not be rooted
		fsPath := strings.TrimPrefix(path.Clean(p), "/")

		data, err := fs.ReadFile(webContent, fsPath)
		if err != nil {
			data, err = fs.ReadFile(webContent, "index.html")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("index.html not found")
			}
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.Send(data)
		}

		c.Set(fiber.HeaderContentType, contentType(fsPath))
		return c.Send(data)
	})

	return app, nil
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return fiber.MIMETextHTMLCharsetUTF8
	case strings.HasSuffix(name, ".js"):
		return fiber.MIMEApplicationJavaScriptCharsetUTF8
	case strings.HasSuffix(name, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(name, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	default:
		return fiber.MIMEOctetStream
	}
}
