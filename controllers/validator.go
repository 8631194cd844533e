package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// BindCustomerForm reads the checkout form from JSON or form-encoded input.
// Surrounding whitespace is trimmed before the required fields are checked.
func (rv *RequestValidator) BindCustomerForm(c *gin.Context) (models.CustomerForm, error) {
	var form models.CustomerForm
	if err := c.ShouldBind(&form); err != nil {
		return models.CustomerForm{}, fmt.Errorf("invalid checkout form: %w", err)
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Phone = strings.TrimSpace(form.Phone)
	form.City = strings.TrimSpace(form.City)
	form.Address = strings.TrimSpace(form.Address)
	form.Notes = strings.TrimSpace(form.Notes)

	if err := rv.validate.Struct(&form); err != nil {
		return models.CustomerForm{}, describeValidation(err)
	}
	return form, nil
}

// BindCredentials reads the login username/password pair.
func (rv *RequestValidator) BindCredentials(c *gin.Context) (models.LoginRequest, error) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return models.LoginRequest{}, errors.New("invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := rv.validate.Struct(&req); err != nil {
		return models.LoginRequest{}, describeValidation(err)
	}
	return req, nil
}

// BindRegistration reads a new account's credentials. Passwords are checked
// for a minimum length; the backend owns every other rule.
func (rv *RequestValidator) BindRegistration(c *gin.Context) (models.RegisterRequest, error) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return models.RegisterRequest{}, errors.New("invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := rv.validate.Struct(&req); err != nil {
		return models.RegisterRequest{}, describeValidation(err)
	}
	return req, nil
}

// ParseProductID validates the :id path parameter.
func (rv *RequestValidator) ParseProductID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errors.New("invalid product id")
	}
	return id, nil
}

// describeValidation flattens validator errors into one message naming the
// offending fields.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "min" {
			return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
