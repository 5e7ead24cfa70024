package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sangkips/kassensystem/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("Should fall back to defaults", func(t *testing.T) {
		cfg := config.Load()

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 48, cfg.Printer.Width)
		assert.Equal(t, 5*time.Second, cfg.Printer.Timeout)
		assert.Equal(t, "System", cfg.Store.DefaultCashier)
		assert.False(t, cfg.Sales.RejectOversell)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	})

	t.Run("Should read environment overrides", func(t *testing.T) {
		t.Setenv("PRINTER_TYPE", "network")
		t.Setenv("PRINTER_ADDRESS", "10.0.0.5:9100")
		t.Setenv("PRINTER_TIMEOUT", "750ms")
		t.Setenv("SALES_REJECT_OVERSELL", "true")
		t.Setenv("APP_TIMEZONE", "UTC")

		cfg := config.Load()

		assert.Equal(t, "network", cfg.Printer.Type)
		assert.Equal(t, "10.0.0.5:9100", cfg.Printer.Address)
		assert.Equal(t, 750*time.Millisecond, cfg.Printer.Timeout)
		assert.True(t, cfg.Sales.RejectOversell)
		assert.Equal(t, time.UTC, cfg.App.Location())
	})

	t.Run("Should fall back to UTC for an unknown zone", func(t *testing.T) {
		app := config.AppConfig{Timezone: "Mars/Olympus"}
		assert.Equal(t, time.UTC, app.Location())
	})
}
