package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Nome     string `json:"cliente_nome" validate:"required"`
	WhatsApp string `json:"cliente_whatsapp" validate:"required,whatsapp"`
	Email    string `json:"cliente_email,omitempty" validate:"omitempty,contactemail"`
	Qty      int    `json:"quantidade" validate:"gte=0,lte=99"`
}

func validContact() contact {
	return contact{Nome: "Ana", WhatsApp: "+55 11 99999-9999", Email: "ana@example.com"}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validContact()))
}

func TestValidate_EmailIsOptional(t *testing.T) {
	c := validContact()
	c.Email = ""
	assert.NoError(t, Validate(c))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(contact{})
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["cliente_nome"])
	assert.Equal(t, "is required", fields["cliente_whatsapp"])
}

func TestValidate_ContactEmailRequiresDotInDomain(t *testing.T) {
	for _, email := range []string{"a@b", "ana@", "@example.com", "ana example@x.com", "ana"} {
		c := validContact()
		c.Email = email
		fields := fieldsOf(t, Validate(c))
		assert.Equal(t, "must be a valid email address", fields["cliente_email"], email)
	}
}

func TestValidate_WhatsApp(t *testing.T) {
	c := validContact()
	c.WhatsApp = "call me"
	assert.Equal(t, "must be a valid WhatsApp number", fieldsOf(t, Validate(c))["cliente_whatsapp"])
}

func TestValidate_OutOfRange(t *testing.T) {
	c := validContact()
	c.Qty = 120
	assert.Contains(t, fieldsOf(t, Validate(c))["quantidade"], "99")
}

func TestValidationError_First(t *testing.T) {
	var valErr *ValidationError
	require.ErrorAs(t, Validate(contact{WhatsApp: "11999999999"}), &valErr)
	field, msg := valErr.First()
	assert.Equal(t, "cliente_nome", field)
	assert.Equal(t, "is required", msg)
	assert.Contains(t, valErr.Error(), "field 'cliente_nome' is required")
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("cliente@queenstore.com.br"))
	assert.False(t, IsEmail("cliente@queenstore"))
}

func TestDecodeAndValidate(t *testing.T) {
	var c contact
	err := DecodeAndValidate(strings.NewReader(`{"cliente_nome":"Ana","cliente_whatsapp":"11999999999"}`), &c)
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Nome)

	err = DecodeAndValidate(strings.NewReader(`{bad`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode body")
}
