package internal

import (
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func GetCORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE"},
	}
}

func GetRateLimiterConfig() middleware.RateLimiterConfig {
	config := middleware.DefaultRateLimiterConfig
	config.Store = middleware.NewRateLimiterMemoryStore(rate.Limit(20))
	return config
}
