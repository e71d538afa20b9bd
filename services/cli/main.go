package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"imagesearch/common/client"
	"imagesearch/common/config"
	"imagesearch/common/session"
)

func main() {
	cfg, err := config.Load()
	logger := cfg.NewLogger("imagesearch-cli")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Define flags
	var (
		relayURL = flag.String("relay", cfg.RelayURL, "Relay proxy URL")
		classify = flag.String("classify", "", "Classify the image at this path")
		similar  = flag.String("similar", "", "Search images similar to the image at this path")
		text     = flag.String("text", "", "Search images matching this text")
	)
	flag.Parse()

	if *classify == "" && *similar == "" && *text == "" {
		fmt.Println("Usage: imagesearch-cli [options]")
		fmt.Println("       imagesearch-cli -classify cat.jpg")
		fmt.Println("       imagesearch-cli -similar cat.jpg -text \"red car\"")
		flag.PrintDefaults()
		os.Exit(2)
	}

	notifier := session.NewWriterNotifier(os.Stderr)
	app := session.NewApp(
		client.New(*relayURL, client.WithTimeout(cfg.RequestTimeout)),
		notifier,
		logger,
	)

	if !run(context.Background(), app, notifier, os.Stdout, *classify, *similar, *text) {
		os.Exit(1)
	}
}

// run performs every requested action and prints the results. It reports
// false when any action was rejected or failed. An image action whose file
// cannot be read is skipped, so results never belong to a previous file.
func run(ctx context.Context, app *session.App, notifier session.Notifier, out io.Writer, classifyPath, similarPath, query string) bool {
	ok := true

	if classifyPath != "" {
		if !selectFile(app, notifier, classifyPath) {
			ok = false
		} else if app.ClassifyImage(ctx) {
			fmt.Fprintln(out, "Classification Results:")
			for _, line := range app.State().ClassificationLines() {
				fmt.Fprintf(out, "  %s\n", line)
			}
		} else {
			ok = false
		}
	}

	if similarPath != "" {
		if !selectFile(app, notifier, similarPath) {
			ok = false
		} else if app.SearchSimilarImages(ctx) {
			similar := app.State().Similar
			fmt.Fprintf(out, "Similar Images in Category: %s\n", similar.Category)
			for _, img := range similar.SimilarImages {
				fmt.Fprintf(out, "  %s  %s\n", img.URL, img.Description)
			}
		} else {
			ok = false
		}
	}

	if query != "" {
		app.SetTextQuery(query)
		if app.SearchImagesByText(ctx) {
			fmt.Fprintln(out, "Search Results:")
			for _, img := range app.State().TextResults {
				fmt.Fprintf(out, "  %s  %s\n", img.URL, img.Description)
			}
		} else {
			ok = false
		}
	}

	return ok
}

// selectFile loads the image at path into the session. On failure the
// previous selection is kept and the user is alerted.
func selectFile(app *session.App, notifier session.Notifier, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		notifier.Alert(fmt.Sprintf("Could not read the selected image %s: %v", path, err))
		return false
	}
	app.SelectFile(client.Upload{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
	return true
}
