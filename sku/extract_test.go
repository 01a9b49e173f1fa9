package sku

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sku-traverser/internal/types"
)

func TestPrice_ReturnsResolvedText(t *testing.T) {
	loc := types.DefaultLocators()
	page := &fakePage{eval: func(script string) (string, error) {
		if script == priceScript(loc) {
			return "￥123.45", nil
		}
		return "", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	assert.Equal(t, "￥123.45", ext.Price(context.Background()))
}

func TestPrice_NormalizesCurrencySign(t *testing.T) {
	loc := types.DefaultLocators()
	page := &fakePage{eval: func(script string) (string, error) {
		return " ¥99 ", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	assert.Equal(t, "￥99", ext.Price(context.Background()))
}

func TestPrice_SentinelWithinBudget(t *testing.T) {
	loc := types.DefaultLocators()
	// The page never produces a digit: symbol-only text stays unresolved.
	page := &fakePage{eval: func(script string) (string, error) {
		return "￥", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	start := time.Now()
	price := ext.Price(context.Background())

	assert.Equal(t, PriceNotFound, price)
	assert.Less(t, time.Since(start), time.Second, "poll must stay inside its budget")
}

func TestPrice_RetriesPastTransientErrors(t *testing.T) {
	loc := types.DefaultLocators()
	calls := 0
	page := &fakePage{eval: func(script string) (string, error) {
		if script != priceScript(loc) {
			return "", nil
		}
		calls++
		if calls < 3 {
			return "", fmt.Errorf("node detached")
		}
		return "￥42", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	assert.Equal(t, "￥42", ext.Price(context.Background()))
	assert.GreaterOrEqual(t, calls, 3)
}

func TestImage_NormalizesProtocolRelative(t *testing.T) {
	loc := types.DefaultLocators()
	page := &fakePage{eval: func(script string) (string, error) {
		if script == imageScript(loc) {
			return "//img.example.com/main.jpg", nil
		}
		return "", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	assert.Equal(t, "https://img.example.com/main.jpg", ext.Image(context.Background()))
}

func TestImage_EmptyOnTimeout(t *testing.T) {
	loc := types.DefaultLocators()
	page := &fakePage{eval: func(script string) (string, error) {
		return "", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	start := time.Now()
	url := ext.Image(context.Background())

	assert.Empty(t, url)
	assert.Less(t, time.Since(start), time.Second)
}

func TestImage_RejectsNonHTTP(t *testing.T) {
	loc := types.DefaultLocators()
	page := &fakePage{eval: func(script string) (string, error) {
		if script == imageScript(loc) {
			return "data:image/png;base64,AAAA", nil
		}
		return "", nil
	}}
	ext := NewExtractor(page, loc, testConfig(), testLogger())

	assert.Empty(t, ext.Image(context.Background()))
}
