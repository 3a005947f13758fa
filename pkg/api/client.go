package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
)

type Client interface {
	Header(name, value string) Client
	Query(query Parameter) Client
	Body(body Body) Client
	POST(ctx context.Context) (*Response, error)
}

type Generator interface {
	New(domain, path string, args ...any) Client
}

type defaultGenerator struct{}

func NewGenerator() *defaultGenerator {
	return &defaultGenerator{}
}

func (g *defaultGenerator) New(domain, path string, args ...any) Client {
	return &defaultClient{
		url:     domain + fmt.Sprintf(path, args...),
		headers: make(map[string]string),
	}
}

// Body is a request payload, either JSON or form encoded Parameter.
type Body interface {
	apply(req *resty.Request)
}

type defaultClient struct {
	url     string
	headers map[string]string
	query   Parameter
	body    Body
}

func (c *defaultClient) Header(name, value string) Client {
	c.headers[name] = value
	return c
}

func (c *defaultClient) Query(query Parameter) Client {
	c.query = query
	return c
}

func (c *defaultClient) Body(body Body) Client {
	c.body = body
	return c
}

func (c *defaultClient) POST(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodPost)
}

func (c *defaultClient) call(ctx context.Context, method string) (*Response, error) {
	req := xcontext.HTTPClient(ctx).R().
		SetContext(ctx).
		SetHeaders(c.headers)

	if c.query != nil {
		req.SetQueryParams(c.query)
	}

	if c.body != nil {
		c.body.apply(req)
	}

	result, err := req.Execute(method, c.url)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Code:    result.StatusCode(),
		Header:  result.Header(),
		RawBody: result.Body(),
	}

	body := result.Body()
	if len(body) == 0 {
		response.Body = JSON{}
	} else if b, err := bytesToJSON(body); err == nil {
		response.Body = b
	} else if b, err := bytesToArray(body); err == nil {
		response.Body = b
	} else {
		xcontext.Logger(ctx).Warnf("An error occured when parse body of %s: %v", c.url, err)
		return nil, err
	}

	return response, nil
}
