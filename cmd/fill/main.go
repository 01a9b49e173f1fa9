package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"sku-traverser/grid"
	"sku-traverser/internal/plan"
	"sku-traverser/internal/types"
	"sku-traverser/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag     = flag.String("url", "", "Page URL holding the grid")
		planFlag    = flag.String("plan", "", "YAML file with one value per grid row (null = skip)")
		timeout     = flag.Duration("timeout", 30*time.Second, "Per-operation browser timeout")
		headless    = flag.Bool("headless", false, "Run the browser headless")
		userDataDir = flag.String("user-data-dir", "", "Chrome user data directory for a logged-in profile")
		profileDir  = flag.String("profile", "", "Chrome profile directory name within the user data dir")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("The --url flag is required")
	}
	if *planFlag == "" {
		log.Fatal("The --plan flag is required")
	}

	// Setup logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	values, err := plan.Load(*planFlag)
	if err != nil {
		logger.Fatalf("Failed to load plan: %v", err)
	}
	logger.Infof("Loaded plan with %d rows", len(values))

	config := types.DefaultConfig()
	config.Headless = *headless
	config.Timeout = *timeout
	config.UserDataDir = *userDataDir
	config.ProfileDir = *profileDir

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	browser := utils.NewBrowserClient(config, logger)
	if err := browser.Start(ctx); err != nil {
		logger.Fatalf("Failed to start browser: %v", err)
	}
	defer browser.Close()

	if err := browser.Navigate(ctx, *urlFlag); err != nil {
		logger.Fatalf("Failed to open %s: %v", *urlFlag, err)
	}

	startTime := time.Now()
	writer := grid.NewWriter(browser, types.DefaultLocators(), config, logger)
	processed, total, err := writer.Fill(ctx, values)
	if err != nil {
		logger.Fatalf("Grid fill aborted after %d/%d values: %v", processed, total, err)
	}

	logger.Infof("Grid fill completed in %v: processed %d of %d values", time.Since(startTime), processed, total)
}
