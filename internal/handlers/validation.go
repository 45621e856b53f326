package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"playhub/internal/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册自定义校验标签：
//
//	seomax=N  按显示宽度（CJK 记 2）不超过 N
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("seomax", seoMax)
}

func seoMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return !utils.IsOverLimit(fl.Field().String(), limit)
}

// validationErrors 转成 字段 -> 提示 的形式
func validationErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "is required"
		case "seomax":
			out[fe.Field()] = fmt.Sprintf("exceeds %s width units (CJK counts as 2)", fe.Param())
		case "max":
			out[fe.Field()] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			out[fe.Field()] = "is invalid"
		}
	}
	return out
}
