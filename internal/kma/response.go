package kma

import (
	"errors"
	"fmt"
)

// ResultOK is the header result code of a successful call.
const ResultOK = "00"

var (
	ErrEmptyResponse = errors.New("kma: empty response")
	ErrNoItems       = errors.New("kma: response has no items")
)

// APIError is returned when the provider answers with a result code other
// than ResultOK, e.g. "03 NO_DATA" or "30 SERVICE_KEY_IS_NOT_REGISTERED_ERROR".
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kma api error: %s - %s", e.Code, e.Message)
}

// Response mirrors the JSON envelope of the village forecast service.
type Response struct {
	Response struct {
		Header Header `json:"header"`
		Body   *Body  `json:"body"`
	} `json:"response"`
}

type Header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

type Body struct {
	DataType string `json:"dataType"`
	Items    struct {
		Item []Item `json:"item"`
	} `json:"items"`
	PageNo     int `json:"pageNo"`
	NumOfRows  int `json:"numOfRows"`
	TotalCount int `json:"totalCount"`
}

// Item is one observation or forecast value. Nowcast items carry ObsrValue;
// forecast items carry FcstDate, FcstTime and FcstValue.
type Item struct {
	BaseDate  string `json:"baseDate"`
	BaseTime  string `json:"baseTime"`
	Category  string `json:"category"`
	FcstDate  string `json:"fcstDate,omitempty"`
	FcstTime  string `json:"fcstTime,omitempty"`
	FcstValue string `json:"fcstValue,omitempty"`
	ObsrValue string `json:"obsrValue,omitempty"`
	Nx        int    `json:"nx"`
	Ny        int    `json:"ny"`
}

// Value returns the observed value for nowcast items and the forecast value
// otherwise.
func (i Item) Value() string {
	if i.ObsrValue != "" {
		return i.ObsrValue
	}
	return i.FcstValue
}

// Items checks the header and returns the item list, or an error describing
// why there is nothing to render.
func (r *Response) Items() ([]Item, error) {
	if r == nil {
		return nil, ErrEmptyResponse
	}

	h := r.Response.Header
	if h.ResultCode != ResultOK {
		if h.ResultCode == "" && r.Response.Body == nil {
			return nil, ErrEmptyResponse
		}
		return nil, &APIError{Code: h.ResultCode, Message: h.ResultMsg}
	}

	if r.Response.Body == nil {
		return nil, ErrEmptyResponse
	}
	if len(r.Response.Body.Items.Item) == 0 {
		return nil, ErrNoItems
	}
	return r.Response.Body.Items.Item, nil
}
