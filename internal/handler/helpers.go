package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"veredapos/internal/apierror"
	"veredapos/internal/model"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// report JSON names so clients can map errors back to their form fields
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// DocumentRenderer produces the printable documents. *infra.Renderer
// satisfies it.
type DocumentRenderer interface {
	Invoice(o *model.Order, menu []model.Dish, s model.Settings, customer *model.Customer) ([]byte, error)
	PreCheck(o *model.Order, menu []model.Dish, s model.Settings) ([]byte, error)
	ShiftClosing(sum model.ShiftSummary, s model.Settings) ([]byte, error)
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string DTOs.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.FromValidator(err))
		return false
	}
	return true
}

// conflicts are rule violations about the current state of a resource.
var conflicts = []error{
	service.ErrOrderClosed, service.ErrOrderNotClosed, service.ErrTableOccupied,
	service.ErrCustomerHasDebt, service.ErrCategoryInUse, service.ErrDuplicateID,
	service.ErrDuplicatePIN, service.ErrLastOwner,
}

// invalid are rule violations about the request itself.
var invalid = []error{
	service.ErrOrderEmpty, service.ErrInvalidQuantity, service.ErrInvalidPaymentMethod,
	service.ErrInvalidOrderType, service.ErrInvalidItemStatus, service.ErrInvalidAmount,
	service.ErrInvalidZone, service.ErrInvalidSetting,
}

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service errors to status codes. Anything unexpected is
// handed to the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case matchAny(err, conflicts):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case matchAny(err, invalid):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Parametro invalido: "+name))
		return 0, false
	}
	return v, true
}

// parseDay reads a YYYY-MM-DD calendar date. An empty string gives the zero
// time, which the services read as today in their configured timezone.
func parseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func sendPDF(c *gin.Context, name string, pdf []byte) {
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
