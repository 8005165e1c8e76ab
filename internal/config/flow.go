package config

import (
	"fmt"
	"time"
)

// FlowConfig holds the booking flow settings.
type FlowConfig struct {
	// Location is the salon's time zone; "today" and slot cutoffs use it.
	Location *time.Location
	// WindowDays is how many days, today included, are open for booking.
	WindowDays int
	// IdleTTL is how long an untouched flow survives before it is abandoned.
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// LoadFlowConfig reads SALON_TIMEZONE, BOOKING_WINDOW_DAYS, FLOW_IDLE_TTL and
// FLOW_SWEEP_INTERVAL.
func LoadFlowConfig() (FlowConfig, error) {
	tz := envStr("SALON_TIMEZONE", "Asia/Shanghai")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return FlowConfig{}, fmt.Errorf("SALON_TIMEZONE %q: %w", tz, err)
	}
	c := FlowConfig{
		Location:      loc,
		WindowDays:    envInt("BOOKING_WINDOW_DAYS", 7),
		IdleTTL:       envDur("FLOW_IDLE_TTL", 30*time.Minute),
		SweepInterval: envDur("FLOW_SWEEP_INTERVAL", time.Minute),
	}
	if c.WindowDays < 1 {
		c.WindowDays = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return c, nil
}

// BrokerConfig locates the RabbitMQ broker.  An empty URL disables event
// publishing.
type BrokerConfig struct {
	URL       string
	Exchange  string
	LogQueue  string
	LogFile   string
	RetryWait time.Duration
}

// LoadBrokerConfig reads AMQP_URL and friends.  RABBITMQ_URL is accepted as
// an alias.
func LoadBrokerConfig() BrokerConfig {
	url := envStr("AMQP_URL", envStr("RABBITMQ_URL", ""))
	return BrokerConfig{
		URL:       url,
		Exchange:  envStr("AMQP_EXCHANGE", "salon.events"),
		LogQueue:  envStr("AMQP_LOG_QUEUE", "salon.booking-log"),
		LogFile:   envStr("BOOKING_LOG_FILE", "logs/booking.log"),
		RetryWait: envDur("AMQP_RETRY_WAIT", 5*time.Second),
	}
}
