package http

import (
	"net/url"
	"time"
)

// BodyType names the request body section a spec used.
type BodyType string

const (
	BodyNone BodyType = ""
	BodyJSON BodyType = "json"
	BodyForm BodyType = "form"
	BodyText BodyType = "text"
	BodyMult BodyType = "multipart"
)

// MultipartField is one part of a multipart/form-data body. FilePath is set
// for file parts, Value for plain fields.
type MultipartField struct {
	Name     string
	Value    string
	FilePath string
}

// Request is a fully resolved HTTP request, ready for the executor.
type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	Body        string
	BodyType    BodyType
	Multipart   []MultipartField
	BaseDir     string
	Timeout     time.Duration
	Insecure    bool
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// BuildURL appends query parameters to the request URL.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
