package handler

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the isodate and hhmm tags used by the request
// DTOs to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("isodate", isoDate); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("hhmm", clock)
	})
	return registerErr
}

// isoDate accepts YYYY-MM-DD
func isoDate(fl validator.FieldLevel) bool {
	_, err := domain.ParseDate(fl.Field().String())
	return err == nil
}

// clock accepts HH:MM, and HH:MM:SS which is truncated later
func clock(fl validator.FieldLevel) bool {
	_, err := domain.NormalizeClock(fl.Field().String())
	return err == nil
}
