package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charithe/formula/pkg/calculator"
	"github.com/charithe/formula/pkg/logging"
	"github.com/charithe/formula/pkg/numeral"
	"github.com/charithe/formula/pkg/parser"
	"github.com/charithe/formula/pkg/v1pb"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

var (
	app = kingpin.New("formula", "Evaluate formulas locally or against a formula server")

	logLevel = app.Flag("log_level", "Log level").Default("warn").Enum("error", "warn", "info", "debug")
	locale   = app.Flag("locale", "BCP 47 locale the numerals are written in").String()

	addr      = app.Flag("addr", "Server address").Default("localhost:8080").String()
	insecure  = app.Flag("insecure", "Trust unknown CAs").Bool()
	plaintext = app.Flag("plaintext", "Use unencrypted connection").Bool()
	timeout   = app.Flag("timeout", "RPC timeout").Default("10s").Duration()

	evalCmd     = app.Command("eval", "Evaluate a formula in process")
	evalFormula = evalCmd.Arg("formula", "Formula").Required().String()
	evalVars    = evalCmd.Flag("var", "Variable binding as name=value").Short('v').StringMap()
	evalDefs    = evalCmd.Flag("defs", "Path to a YAML file of constants and default variables").ExistingFile()
	evalDiff    = evalCmd.Flag("diff", "Also print the derivative with respect to this variable").String()
	evalDump    = evalCmd.Flag("dump", "Print the compiled bytecode").Bool()

	remoteCmd     = app.Command("remote", "Evaluate a formula on the server")
	remoteFormula = remoteCmd.Arg("formula", "Formula").Required().String()
	remoteVars    = remoteCmd.Flag("var", "Variable binding as name=value").Short('v').StringMap()

	bulkCmd     = app.Command("bulk", "Evaluate a formula on the server once per row read as a YAML list of maps from stdin")
	bulkFormula = bulkCmd.Arg("formula", "Formula").Required().String()

	streamCmd = app.Command("stream", "Stream mode")
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	logging.Init("cli", logging.Options{Level: *logLevel})

	var err error
	switch cmd {
	case evalCmd.FullCommand():
		err = doEval()
	case remoteCmd.FullCommand():
		err = doRemote()
	case bulkCmd.FullCommand():
		err = doBulk()
	case streamCmd.FullCommand():
		err = doStream()
	}

	if err != nil {
		zap.S().Errorw("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func profile() (numeral.Profile, error) {
	if *locale == "" {
		return numeral.C, nil
	}
	return numeral.Parse(*locale)
}

// parseBindings reads name=value pairs with values written in the given profile.
func parseBindings(pairs map[string]string, prof numeral.Profile) (map[string]float64, error) {
	vars := make(map[string]float64, len(pairs))
	for name, text := range pairs {
		n, v, ok := numeral.ReadString(text, prof)
		if !ok || n != len([]rune(text)) {
			return nil, errors.Errorf("invalid value for %s: %q", name, text)
		}
		vars[name] = v
	}
	return vars, nil
}

func printResults(prof numeral.Profile, results []float64) {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = prof.Format(r)
	}
	fmt.Println(strings.Join(out, "; "))
}

func doEval() error {
	prof, err := profile()
	if err != nil {
		return err
	}

	opts := []parser.Option{parser.WithLogger(zap.L().Named("parser"))}
	if *locale != "" {
		opts = append(opts, parser.WithLocale(prof))
	}

	p := parser.New(nil, opts...)
	if *evalDefs != "" {
		defs, err := calculator.LoadDefinitions(*evalDefs)
		if err != nil {
			return err
		}

		if err := defs.Apply(p); err != nil {
			return err
		}
	}

	vars, err := parseBindings(*evalVars, prof)
	if err != nil {
		return err
	}

	for name, value := range vars {
		if v, ok := p.Vars()[name]; ok {
			p.Arena().Set(v, value)
			continue
		}

		if _, err := p.NewVar(name, value); err != nil {
			return err
		}
	}

	if err := p.SetExpr(*evalFormula); err != nil {
		return err
	}

	if *evalDump {
		prog, err := p.Program()
		if err != nil {
			return err
		}
		fmt.Print(prog.Dump(p.Arena()))
	}

	results, err := p.EvalMulti()
	if err != nil {
		return err
	}
	printResults(prof, results)

	if *evalDiff != "" {
		v, ok := p.Vars()[*evalDiff]
		if !ok {
			return errors.Errorf("unknown variable %s", *evalDiff)
		}

		d, err := p.Diff(v, p.Arena().Get(v), 0)
		if err != nil {
			return err
		}
		fmt.Printf("d/d%s: %s\n", *evalDiff, prof.Format(d))
	}

	return nil
}

func doRemote() error {
	prof, err := profile()
	if err != nil {
		return err
	}

	vars, err := parseBindings(*remoteVars, prof)
	if err != nil {
		return err
	}

	client, err := createClient()
	if err != nil {
		return errors.Wrap(err, "failed to connect to server")
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := client.Evaluate(ctx, *remoteFormula, vars, requestOptions()...)
	if err != nil {
		return err
	}

	zap.S().Debugw("Evaluated", "used_variables", resp.UsedVariables)
	printResults(prof, resp.Results)
	return nil
}

func doBulk() error {
	prof, err := profile()
	if err != nil {
		return err
	}

	var rows []map[string]float64
	if err := yaml.NewDecoder(os.Stdin).Decode(&rows); err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to read rows")
	}

	client, err := createClient()
	if err != nil {
		return errors.Wrap(err, "failed to connect to server")
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := client.EvaluateBulk(ctx, *bulkFormula, rows, requestOptions()...)
	if err != nil {
		return err
	}

	failed := make(map[int32]*v1pb.FormulaError, len(resp.Errors))
	for _, e := range resp.Errors {
		failed[e.Row] = e.Error
	}

	for i, r := range resp.Results {
		if e, ok := failed[int32(i)]; ok {
			fmt.Printf("%d\terror: %s\n", i, e.Message)
			continue
		}
		fmt.Printf("%d\t%s\n", i, prof.Format(r))
	}

	return nil
}

// doStream sends each line of stdin to the server. A line of the form "set a=1 b=2"
// rebinds variables and re-evaluates the current formula; any other line replaces the formula.
func doStream() error {
	prof, err := profile()
	if err != nil {
		return err
	}

	client, err := createClient()
	if err != nil {
		return errors.Wrap(err, "failed to connect to server")
	}
	defer client.Close()

	fmt.Fprintln(os.Stderr, `Enter a formula or "set name=value ..." on each line. Press Ctrl+D to end`)

	reqChan := make(chan *v1pb.EvaluateStreamRequest)
	go func() {
		defer close(reqChan)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			req, err := streamRequest(scanner.Text(), prof)
			if err != nil {
				zap.S().Warnw("Skipping line", "error", err)
				continue
			}

			if req != nil {
				reqChan <- req
			}
		}

		if err := scanner.Err(); err != nil {
			zap.S().Warnw("Failed to read stream", "error", err)
		}
	}()

	return client.EvaluateStream(context.Background(), reqChan, func(resp *v1pb.EvaluateStreamResponse) error {
		if resp.Error != nil {
			fmt.Printf("error at %d: %s\n", resp.Error.Position, resp.Error.Message)
			return nil
		}

		printResults(prof, resp.Results)
		return nil
	})
}

func streamRequest(line string, prof numeral.Profile) (*v1pb.EvaluateStreamRequest, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	fields := strings.Fields(line)
	if fields[0] != "set" {
		return &v1pb.EvaluateStreamRequest{Formula: line}, nil
	}

	pairs := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return nil, errors.Errorf("expected name=value, got %q", f)
		}
		pairs[kv[0]] = kv[1]
	}

	vars, err := parseBindings(pairs, prof)
	if err != nil {
		return nil, err
	}

	return &v1pb.EvaluateStreamRequest{Variables: vars}, nil
}

func requestOptions() []calculator.RequestOption {
	if *locale == "" {
		return nil
	}
	return []calculator.RequestOption{calculator.WithLocale(*locale)}
}

func createClient() (*calculator.Client, error) {
	var dialOpts []grpc.DialOption
	if *plaintext {
		dialOpts = append(dialOpts, grpc.WithInsecure())
	} else {
		tlsConf := &tls.Config{
			InsecureSkipVerify: *insecure,
		}
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConf)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, *addr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return calculator.NewClient(conn), nil
}
