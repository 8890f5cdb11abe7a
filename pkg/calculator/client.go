package calculator

import (
	"context"
	"io"

	"github.com/charithe/formula/pkg/v1pb"
	"google.golang.org/grpc"
)

// Client implements the RPC client for the Calculator service
type Client struct {
	conn   *grpc.ClientConn
	client v1pb.CalculatorClient
}

func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:   conn,
		client: v1pb.NewCalculatorClient(conn),
	}
}

type requestOptions struct {
	locale           string
	disableOptimizer bool
}

type RequestOption func(*requestOptions)

// WithLocale asks the server to read numerals the way the given BCP 47 locale writes them.
func WithLocale(locale string) RequestOption {
	return func(o *requestOptions) {
		o.locale = locale
	}
}

func WithoutOptimizer() RequestOption {
	return func(o *requestOptions) {
		o.disableOptimizer = true
	}
}

func applyRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (c *Client) Evaluate(ctx context.Context, formula string, vars map[string]float64, opts ...RequestOption) (*v1pb.EvaluateResponse, error) {
	o := applyRequestOptions(opts)
	return c.client.Evaluate(ctx, &v1pb.EvaluateRequest{
		Formula:          formula,
		Variables:        vars,
		Locale:           o.locale,
		CNumbers:         o.locale == "",
		DisableOptimizer: o.disableOptimizer,
	})
}

func (c *Client) EvaluateBulk(ctx context.Context, formula string, rows []map[string]float64, opts ...RequestOption) (*v1pb.EvaluateBulkResponse, error) {
	o := applyRequestOptions(opts)
	req := &v1pb.EvaluateBulkRequest{
		Formula:  formula,
		Rows:     make([]*v1pb.Row, len(rows)),
		Locale:   o.locale,
		CNumbers: o.locale == "",
	}

	for i, r := range rows {
		req.Rows[i] = &v1pb.Row{Values: r}
	}

	return c.client.EvaluateBulk(ctx, req)
}

// EvaluateStream sends every request read from reqs and passes each response to handler.
// It returns when reqs is closed and the server has answered all of them, or on the first error.
func (c *Client) EvaluateStream(ctx context.Context, reqs <-chan *v1pb.EvaluateStreamRequest, handler func(*v1pb.EvaluateStreamResponse) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.client.EvaluateStream(ctx)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for req := range reqs {
			if err := stream.Send(req); err != nil {
				errc <- err
				return
			}
		}

		if err := stream.CloseSend(); err != nil {
			errc <- err
		}
	}()

	for {
		resp, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				// a send failure surfaces as EOF on the receiving side
				return <-errc
			}
			return err
		}

		if err := handler(resp); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
