package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Milk", SanitizeText("  <b>Milk</b> "))
	assert.Equal(t, "Fish & Chips", SanitizeText("Fish & Chips"))
	assert.Equal(t, "", SanitizeText("<script></script>"))
}

func TestFormulaInjectionRoundTrip(t *testing.T) {
	for _, in := range []string{"=SUM(A1)", "+1", "-5", "@cmd", "plain", "'quoted", "", "'=not a formula", "''+twice", " '@spaced", "'-"} {
		escaped := SanitizeForFormulaInjection(in)
		assert.Equal(t, in, UnescapeFormulaPrefix(escaped), in)
	}
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "'plain", UnescapeFormulaPrefix("'plain"))
	assert.Equal(t, "''=SUM(A1)", SanitizeForFormulaInjection("'=SUM(A1)"))
	assert.Equal(t, "'=SUM(A1)", UnescapeFormulaPrefix("''=SUM(A1)"))
}

func TestValidateTextField(t *testing.T) {
	v, err := ValidateTextField(" Bread ", MaxItemNameLength, "item_name")
	require.NoError(t, err)
	assert.Equal(t, "Bread", v)

	_, err = ValidateTextField("<i></i>", MaxItemNameLength, "item_name")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = ValidateTextField(strings.Repeat("x", 11), 10, "category")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateEmailAndPassword(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@b.co"))
	for _, bad := range []string{"", "a", "@b.co", "a@", "a@b", "a@@b.co", "a@.co"} {
		assert.ErrorIs(t, ValidateEmail(bad), ErrValidationFailed, bad)
	}
	assert.NoError(t, ValidatePassword("123456"))
	assert.ErrorIs(t, ValidatePassword("12345"), ErrValidationFailed)
}

func TestValidateUploadExtension(t *testing.T) {
	f, err := ValidateUploadExtension("Purchases.CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", f)

	f, err = ValidateUploadExtension("data.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", f)

	_, err = ValidateUploadExtension("evil.exe")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateFileContent(t *testing.T) {
	assert.NoError(t, ValidateFileContent(bytes.NewReader([]byte("Name,Price\nMilk,1")), "csv"))
	assert.NoError(t, ValidateFileContent(bytes.NewReader([]byte("PK\x03\x04rest")), "xlsx"))

	assert.ErrorIs(t, ValidateFileContent(bytes.NewReader([]byte{0x00, 0x01}), "json"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateFileContent(bytes.NewReader([]byte("Name,Price")), "xlsx"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateFileContent(bytes.NewReader(nil), "csv"), ErrValidationFailed)

	r := bytes.NewReader([]byte("abc"))
	require.NoError(t, ValidateFileContent(r, "csv"))
	assert.Equal(t, int64(3), int64(r.Len()))
}
