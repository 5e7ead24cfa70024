package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
	"github.com/sangkips/kassensystem/pkg/apperror"
)

var registerTagNames sync.Once

// UseJSONFieldNames makes validation errors report json names instead of Go field names
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// bindError answers a failed ShouldBind call
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrs := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, apperror.FieldError{
				Field:   fieldPath(fe),
				Message: ruleMessage(fe),
			})
		}
		response.ValidationError(c, fieldErrs)
		return
	}
	response.BadRequest(c, "Ungültige Anfrage: "+err.Error())
}

// fieldPath drops the top-level struct name: CreateSaleRequest.items[0].quantity -> items[0].quantity
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Pflichtfeld"
	case "min":
		return fmt.Sprintf("Mindestwert %s", fe.Param())
	case "max":
		return fmt.Sprintf("Höchstwert %s", fe.Param())
	default:
		return fmt.Sprintf("Regel '%s' verletzt", fe.Tag())
	}
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Ungültige ID")
		return 0, false
	}
	return uint(id), true
}

// outcomeStatus maps a print outcome to the HTTP status of a printer endpoint
func outcomeStatus(out service.PrintOutcome) int {
	if out.Success {
		return http.StatusOK
	}
	switch out.Code {
	case apperror.CodePrinterUnavailable, apperror.CodePrinterBusy:
		return http.StatusServiceUnavailable
	case apperror.CodePrintTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
