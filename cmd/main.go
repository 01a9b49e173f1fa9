package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"sku-traverser/export"
	"sku-traverser/internal/types"
	"sku-traverser/sku"
	"sku-traverser/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag      = flag.String("url", "", "Product page URL to traverse")
		outputFlag   = flag.String("output", "", "Result file path, .xlsx/.yaml/.json by extension (default: stdout JSON)")
		imageDirFlag = flag.String("images", "", "Directory to download combination images into (default: no download)")
		maxCombos    = flag.Int("max", 0, "Maximum combinations to visit (0 = all)")
		timeout      = flag.Duration("timeout", 30*time.Second, "Per-operation browser timeout")
		headless     = flag.Bool("headless", true, "Run the browser headless")
		userDataDir  = flag.String("user-data-dir", "", "Chrome user data directory for a logged-in profile")
		profileDir   = flag.String("profile", "", "Chrome profile directory name within the user data dir")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("The --url flag is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.DefaultConfig()
	config.Headless = *headless
	config.Timeout = *timeout
	config.MaxCombos = *maxCombos
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
	logger.Infof("Starting traversal of %s", *urlFlag)

	traverser := sku.NewTraverser(browser, types.DefaultLocators(), config, logger)
	result, err := traverser.Run(ctx)
	if err != nil {
		logger.Fatalf("Traversal failed: %v", err)
	}
	logger.Infof("Traversal completed in %v", time.Since(startTime))

	// Output results
	switch {
	case *outputFlag == "":
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to marshal results: %v", err)
		}
		fmt.Println(string(jsonData))
	case strings.HasSuffix(*outputFlag, ".xlsx"):
		if err := export.WriteExcel(*outputFlag, result); err != nil {
			logger.Fatalf("Failed to write workbook: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	case strings.HasSuffix(*outputFlag, ".yaml"), strings.HasSuffix(*outputFlag, ".yml"):
		if err := export.WriteYAML(*outputFlag, result); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	default:
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to marshal results: %v", err)
		}
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	}

	if *imageDirFlag != "" {
		httpClient := utils.NewHTTPClient(config, logger)
		defer httpClient.Close()
		if _, err := export.DownloadImages(ctx, httpClient, result, *imageDirFlag, logger); err != nil {
			logger.Warnf("Image download incomplete: %v", err)
		}
	}

	// Print summary
	logger.Infof("Combinations visited: %d", result.Total)
	logger.Infof("Combinations succeeded: %d", result.Succeeded)
}
