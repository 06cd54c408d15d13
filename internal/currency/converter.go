package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/swiftremit/backend/internal/apiclient"
)

// RateCacheTTL is how long a fetched rate table stays fresh.
const RateCacheTTL = 5 * time.Minute

// Conversion is the result of converting an amount between currencies.
// Stale is true when the live fetch failed and the hard-coded fallback
// table supplied the rate.
type Conversion struct {
	ConvertedAmount float64 `json:"convertedAmount"`
	Rate            float64 `json:"rate"`
	Stale           bool    `json:"stale"`
}

// rateEnvelope is the wire shape of the external rate endpoint:
// GET <base>/<code> -> {success, rates, base, date}.
type rateEnvelope struct {
	Success bool               `json:"success"`
	Rates   map[string]float64 `json:"rates"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
}

// fallbackRates is the static table used when the live fetch fails,
// expressed as units per USD.
var fallbackRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"CAD": 1.36,
	"NGN": 1535.50,
	"KES": 129.20,
	"GHS": 15.60,
	"ZAR": 18.10,
}

// Converter resolves exchange rates with a live fetch, a Redis cache keyed
// by base currency, and a static fallback. A nil Redis client degrades to
// an in-process cache.
type Converter struct {
	client  *apiclient.Client
	redis   *redis.Client
	baseURL string
	ttl     time.Duration

	mu       sync.Mutex
	memCache map[string]memEntry
}

type memEntry struct {
	rates   map[string]float64
	expires time.Time
}

// NewConverter builds a Converter from config. RATES_API_URL points at the
// rate endpoint; requests go to <url>/<base>.
func NewConverter(client *apiclient.Client, rdb *redis.Client) *Converter {
	viper.SetDefault("rates.api_url", "https://api.exchangerate.host/latest")

	return &Converter{
		client:   client,
		redis:    rdb,
		baseURL:  strings.TrimRight(viper.GetString("rates.api_url"), "/"),
		ttl:      RateCacheTTL,
		memCache: make(map[string]memEntry),
	}
}

// Convert turns amount in from-currency into to-currency. Identical
// currencies short-circuit to rate 1 with no network or cache access.
// Rate-source failure never surfaces as an error; it degrades to the
// fallback table with Stale set.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return Conversion{ConvertedAmount: amount, Rate: 1}, nil
	}

	rates, stale := c.rates(ctx, from)
	rate, ok := rates[to]
	if !ok || rate <= 0 {
		fb, err := fallbackRate(from, to)
		if err != nil {
			return Conversion{}, err
		}
		rate, stale = fb, true
	}

	converted, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()

	return Conversion{ConvertedAmount: converted, Rate: rate, Stale: stale}, nil
}

// rates returns the rate table for a base currency, consulting the cache
// before fetching. The second return is true when the table came from the
// static fallback.
func (c *Converter) rates(ctx context.Context, base string) (map[string]float64, bool) {
	if cached, ok := c.cachedRates(ctx, base); ok {
		return cached, false
	}

	var envelope rateEnvelope
	url := fmt.Sprintf("%s/%s", c.baseURL, base)
	if err := c.client.GetJSON(ctx, url, &envelope); err != nil || !envelope.Success || len(envelope.Rates) == 0 {
		if err != nil {
			log.Printf("[RATES] Live fetch failed for base %s, using fallback table: %v", base, err)
		} else {
			log.Printf("[RATES] Rate endpoint returned empty table for base %s, using fallback", base)
		}
		return fallbackTable(base), true
	}

	c.storeRates(ctx, base, envelope.Rates)
	return envelope.Rates, false
}

func (c *Converter) cacheKey(base string) string {
	return fmt.Sprintf("rates:%s", base)
}

func (c *Converter) cachedRates(ctx context.Context, base string) (map[string]float64, bool) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.cacheKey(base)).Bytes()
		if err == nil {
			var rates map[string]float64
			if json.Unmarshal(data, &rates) == nil && len(rates) > 0 {
				return rates, true
			}
		} else if err != redis.Nil {
			log.Printf("[RATES] Cache read failed for base %s: %v", base, err)
		}
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.memCache[base]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.rates, true
}

func (c *Converter) storeRates(ctx context.Context, base string, rates map[string]float64) {
	if c.redis != nil {
		data, err := json.Marshal(rates)
		if err != nil {
			return
		}
		if err := c.redis.Set(ctx, c.cacheKey(base), data, c.ttl).Err(); err != nil {
			log.Printf("[RATES] Cache write failed for base %s: %v", base, err)
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.memCache[base] = memEntry{rates: rates, expires: time.Now().Add(c.ttl)}
}

// fallbackTable derives a full cross-rate table for base from the USD
// anchored fallback rates.
func fallbackTable(base string) map[string]float64 {
	baseUSD, ok := fallbackRates[base]
	if !ok || baseUSD == 0 {
		return nil
	}

	table := make(map[string]float64, len(fallbackRates))
	for code, perUSD := range fallbackRates {
		table[code] = perUSD / baseUSD
	}
	return table
}

func fallbackRate(from, to string) (float64, error) {
	fromUSD, ok := fallbackRates[from]
	if !ok || fromUSD == 0 {
		return 0, fmt.Errorf("no rate available for currency %s", from)
	}
	toUSD, ok := fallbackRates[to]
	if !ok {
		return 0, fmt.Errorf("no rate available for currency %s", to)
	}
	return toUSD / fromUSD, nil
}

// Quote prices a transfer end to end: conversion plus fees.
func (c *Converter) Quote(ctx context.Context, schedule FeeSchedule, sendAmount float64, sendCurrency, receiveCurrency string) (CurrencyAmount, error) {
	conv, err := c.Convert(ctx, sendAmount, sendCurrency, receiveCurrency)
	if err != nil {
		return CurrencyAmount{}, err
	}

	fees := schedule.Calculate(sendAmount, sendCurrency)
	total, _ := decimal.NewFromFloat(sendAmount).
		Add(decimal.NewFromFloat(fees)).
		Round(2).
		Float64()

	return CurrencyAmount{
		SendAmount:      sendAmount,
		SendCurrency:    sendCurrency,
		ReceiveAmount:   conv.ConvertedAmount,
		ReceiveCurrency: receiveCurrency,
		ExchangeRate:    conv.Rate,
		Fees:            fees,
		TotalAmount:     total,
		RateStale:       conv.Stale,
	}, nil
}
