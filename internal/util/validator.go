package util

import (
	"becoming_backend/internal/model"
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 在 gin 的校验引擎上注册业务校验标签。
// tokenValid 由当前推送通道提供。
func RegisterValidators(tokenValid func(string) bool) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return registerOn(v, tokenValid)
}

func registerOn(v *validator.Validate, tokenValid func(string) bool) error {
	if err := v.RegisterValidation("pushtoken", func(fl validator.FieldLevel) bool {
		return tokenValid(fl.Field().String())
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := NormalizeClock(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	return v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return model.ValidWeekday(fl.Field().String())
	})
}
