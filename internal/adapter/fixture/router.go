package fixture

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Options tunes the fixture server
type Options struct {
	// Latency delays every response, to exercise overlapping selections
	Latency time.Duration
	// LocationLatency adds per-location delays on top of Latency
	LocationLatency map[string]time.Duration
}

type router struct {
	data *Dataset
	opts Options
}

// NewRouter serves the three read-only upstream endpoints from ds
func NewRouter(ds *Dataset, opts Options) *gin.Engine {
	r := &router{data: ds, opts: opts}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), r.latency())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ad-locations/", r.listLocations)
	engine.GET("/ad-spends/", r.listAdSpends)
	engine.GET("/business-cryptos/", r.listBusinessCryptos)

	return engine
}

func (r *router) latency() gin.HandlerFunc {
	return func(c *gin.Context) {
		delay := r.opts.Latency
		if location, ok := c.GetQuery("location"); ok {
			delay += r.opts.LocationLatency[location]
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func (r *router) listLocations(c *gin.Context) {
	out := make([]gin.H, 0, len(r.data.Locations))
	for _, loc := range r.data.Locations {
		out = append(out, gin.H{"id": rawOrNull(loc.ID), "name": loc.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (r *router) listAdSpends(c *gin.Context) {
	c.JSON(http.StatusOK, filter(c, r.data.AdSpends, "amount", func(rec Record) json.RawMessage { return rec.Amount }))
}

func (r *router) listBusinessCryptos(c *gin.Context) {
	c.JSON(http.StatusOK, filter(c, r.data.BusinessCryptos, "crypto_amount", func(rec Record) json.RawMessage { return rec.CryptoAmount }))
}

// filter keeps the records of the requested location; without ?location= every record is returned
func filter(c *gin.Context, records []Record, amountField string, amount func(Record) json.RawMessage) []gin.H {
	location, filtered := c.GetQuery("location")

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		if filtered && rec.Location != location {
			continue
		}
		item := gin.H{"id": rawOrNull(rec.ID), "date": rec.Date}
		if v := amount(rec); len(v) > 0 {
			item[amountField] = v
		}
		out = append(out, item)
	}
	return out
}

func rawOrNull(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage("null")
	}
	return v
}
