package api

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// JSONSerializer implements echo.JSONSerializer on top of sonic.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize serves c.Bind; the task handlers call decodeBody directly so
// they can answer with localized errors.
func (JSONSerializer) Deserialize(c echo.Context, i any) error {
	err := decodeBody(c.Request().Body, i)
	if err == nil {
		return nil
	}
	if errors.Is(err, errEmptyBody) {
		return echo.NewHTTPError(http.StatusBadRequest, "empty body").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}
