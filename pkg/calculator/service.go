package calculator

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/charithe/formula/pkg/numeral"
	"github.com/charithe/formula/pkg/parser"
	"github.com/charithe/formula/pkg/v1pb"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/status"
)

// Service implements the RPC interface of the calculator
type Service struct {
	*health.Server
	defs    *Definitions
	workers int
}

type Option func(*Service)

// WithDefinitions makes the given constants and default variables available to every formula.
func WithDefinitions(defs *Definitions) Option {
	return func(s *Service) {
		s.defs = defs
	}
}

// WithBulkWorkers sets the number of goroutines evaluating the rows of a bulk request.
func WithBulkWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		Server: health.NewServer(),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Service) newParser(locale string, cNumbers, optimize bool) (*parser.Parser, error) {
	opts := []parser.Option{
		parser.Optimizer(optimize),
		parser.BulkWorkers(s.workers),
	}

	if locale != "" && !cNumbers {
		prof, err := numeral.Parse(locale)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		opts = append(opts, parser.WithLocale(prof))
	}

	p := parser.New(nil, opts...)
	if err := s.defs.Apply(p); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return p, nil
}

func bind(p *parser.Parser, values map[string]float64) error {
	vars := p.Vars()
	for name, value := range values {
		if v, ok := vars[name]; ok {
			p.Arena().Set(v, value)
			continue
		}

		if _, err := p.NewVar(name, value); err != nil {
			return err
		}
	}

	return nil
}

func compile(ctx context.Context, p *parser.Parser, formula string) error {
	start := time.Now()
	defer recordCompile(ctx, start)

	return p.SetExpr(formula)
}

func usedVariables(p *parser.Parser) []string {
	used := p.UsedVars()
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) Evaluate(ctx context.Context, req *v1pb.EvaluateRequest) (*v1pb.EvaluateResponse, error) {
	// if the context has already expired, we can avoid unnecessary work
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.newParser(req.Locale, req.CNumbers, !req.DisableOptimizer)
	if err != nil {
		return nil, err
	}

	if err := bind(p, req.Variables); err != nil {
		return nil, toStatus(ctx, err)
	}

	if err := compile(ctx, p, req.Formula); err != nil {
		return nil, toStatus(ctx, err)
	}

	results, err := p.EvalMulti()
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	recordEvaluations(ctx, "Evaluate", 1)
	return &v1pb.EvaluateResponse{Results: results, UsedVariables: usedVariables(p)}, nil
}

func (s *Service) EvaluateBulk(ctx context.Context, req *v1pb.EvaluateBulkRequest) (*v1pb.EvaluateBulkResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.newParser(req.Locale, req.CNumbers, true)
	if err != nil {
		return nil, err
	}

	// every name bound by any row becomes a variable, defaulting to zero in the rows that omit it
	for _, row := range req.Rows {
		for name := range row.Values {
			if _, ok := p.Vars()[name]; ok {
				continue
			}

			if _, err := p.NewVar(name, 0); err != nil {
				return nil, toStatus(ctx, err)
			}
		}
	}

	if err := compile(ctx, p, req.Formula); err != nil {
		return nil, toStatus(ctx, err)
	}

	vars := p.Vars()
	base := p.Arena().Row()
	rows := make([][]float64, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = make([]float64, len(base))
		copy(rows[i], base)
		for name, value := range row.Values {
			rows[i][vars[name]] = value
		}
	}

	results, err := p.EvalBulk(rows)
	recordEvaluations(ctx, "EvaluateBulk", len(rows))

	resp := &v1pb.EvaluateBulkResponse{Results: results}
	for _, e := range multierr.Errors(err) {
		recordError(ctx, e)

		rowErr, ok := e.(*parser.RowError)
		if !ok {
			zap.S().Errorw("Bulk evaluation failed", "error", e)
			return nil, status.Error(codes.Internal, e.Error())
		}

		resp.Errors = append(resp.Errors, &v1pb.RowError{Row: int32(rowErr.Row), Error: formulaError(rowErr.Err)})
	}

	sort.Slice(resp.Errors, func(i, j int) bool { return resp.Errors[i].Row < resp.Errors[j].Row })
	return resp, nil
}

// EvaluateStream keeps one parser per stream. A request carrying a formula replaces the compiled
// formula and a request carrying only variables re-evaluates it with the new bindings.
// Formula errors are reported in the response so that the stream survives them.
func (s *Service) EvaluateStream(stream v1pb.Calculator_EvaluateStreamServer) error {
	ctx := stream.Context()

	p, err := s.newParser("", true, true)
	if err != nil {
		return err
	}

	for {
		req, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}

			zap.S().Warnw("Failed to receive request from stream", "error", err)
			return err
		}

		if req.Formula == "" && p.Expr() == "" {
			return status.Error(codes.FailedPrecondition, "first request of the stream must carry a formula")
		}

		resp := &v1pb.EvaluateStreamResponse{}
		if results, err := evaluateStreamRequest(ctx, p, req); err != nil {
			recordError(ctx, err)
			resp.Error = formulaError(err)
		} else {
			recordEvaluations(ctx, "EvaluateStream", 1)
			resp.Results = results
			resp.UsedVariables = usedVariables(p)
		}

		if err := stream.Send(resp); err != nil {
			zap.S().Errorw("Failed to send response", "error", err)
			return err
		}
	}
}

func evaluateStreamRequest(ctx context.Context, p *parser.Parser, req *v1pb.EvaluateStreamRequest) ([]float64, error) {
	if err := bind(p, req.Variables); err != nil {
		return nil, err
	}

	if req.Formula != "" {
		if err := compile(ctx, p, req.Formula); err != nil {
			return nil, err
		}
	}

	return p.EvalMulti()
}

func formulaError(err error) *v1pb.FormulaError {
	e, ok := errors.Cause(err).(*parser.Error)
	if !ok {
		return &v1pb.FormulaError{Category: parser.Internal.String(), Position: -1, Message: err.Error()}
	}

	return &v1pb.FormulaError{
		Code:     int32(e.Code),
		Category: e.Category().String(),
		Position: int32(e.Pos),
		Token:    e.Token,
		Message:  e.Error(),
	}
}

func toStatus(ctx context.Context, err error) error {
	recordError(ctx, err)

	switch {
	case parser.IsCompileError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case parser.IsEvalError(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		zap.S().Errorw("Unexpected engine failure", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
