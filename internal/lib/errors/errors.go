package errors

// HttpError is the JSON body of a failed non-frame API call.
type HttpError struct {
	Error string `json:"error"`
}

func NewHttpError(msg string) HttpError {
	return HttpError{Error: msg}
}
