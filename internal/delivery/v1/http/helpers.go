package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrMissingImage):
		return http.StatusBadRequest, e.ErrMissingImage.Error()
	case errors.Is(err, e.ErrMissingProductID):
		return http.StatusBadRequest, e.ErrMissingProductID.Error()
	case errors.Is(err, e.ErrProductNameRequired):
		return http.StatusBadRequest, e.ErrProductNameRequired.Error()
	case errors.Is(err, e.ErrPriceMustBePositive):
		return http.StatusBadRequest, e.ErrPriceMustBePositive.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrInvalidTopK):
		return http.StatusBadRequest, e.ErrInvalidTopK.Error()
	case errors.Is(err, e.ErrInvalidBatchSource):
		return http.StatusBadRequest, e.ErrInvalidBatchSource.Error()
	case errors.Is(err, e.ErrInvalidBase64):
		return http.StatusBadRequest, e.ErrInvalidBase64.Error()
	case errors.Is(err, e.ErrImageTooSmall):
		return http.StatusBadRequest, e.ErrImageTooSmall.Error()
	case errors.Is(err, e.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrImageTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrImageUnreachable):
		return http.StatusUnprocessableEntity, e.ErrImageUnreachable.Error()
	case errors.Is(err, e.ErrEmbedderRejected):
		return http.StatusUnprocessableEntity, e.ErrEmbedderRejected.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrEmbedderUnavailable):
		return http.StatusServiceUnavailable, e.ErrEmbedderUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

// parsePriceToCents конвертирует строку вида "599.99" или "600" в минорные
// единицы. Отклоняет отрицательные значения, больше двух знаков после запятой
// и цены выше разумного потолка.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return 0, e.ErrPriceMustBePositive
	}

	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// priceFromJSON принимает цену как JSON-число или строку: каталоги партнёров
// присылают и так, и так.
func priceFromJSON(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, e.ErrPriceMustBePositive
	}

	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)

	return parsePriceToCents(s)
}
