// Package response implements the uniform JSON envelope every endpoint
// returns: {success, data|error, pagination?, meta}.
package response

import (
	"math"
	"time"
)

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       Meta        `json:"meta"`
}

func Success(data interface{}) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
		Meta:    Meta{Timestamp: time.Now().UTC()},
	}
}

func Error(code, message string, details interface{}) Envelope {
	return Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
		Meta:    Meta{Timestamp: time.Now().UTC()},
	}
}

func Paginated(data interface{}, page, perPage int, total int64) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
		},
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
}
