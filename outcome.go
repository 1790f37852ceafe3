package hackload

import (
	"fmt"
	"net/http"
)

// Outcome is a verdict on one response, Reason is set only for failures
type Outcome struct {
	Success bool
	Reason  string
}

func (o Outcome) String() string {
	if o.Success {
		return "success"
	}
	return "failure: " + o.Reason
}

func Success() Outcome {
	return Outcome{Success: true}
}

func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Classifier maps response status code to an outcome
type Classifier func(statusCode int) Outcome

// DefaultClassify any 2xx is a success
func DefaultClassify(statusCode int) Outcome {
	if statusCode >= 200 && statusCode < 300 {
		return Success()
	}
	return statusFailure(statusCode)
}

// ClassifyRegistration accepts 400 as well as 201, duplicate emails are expected under load
func ClassifyRegistration(statusCode int) Outcome {
	switch statusCode {
	case http.StatusCreated, http.StatusBadRequest:
		return Success()
	default:
		return statusFailure(statusCode)
	}
}

func ClassifyContact(statusCode int) Outcome {
	if statusCode == http.StatusOK {
		return Success()
	}
	return statusFailure(statusCode)
}

func statusFailure(statusCode int) Outcome {
	return Failure(fmt.Sprintf(errStatusCode, statusCode))
}
