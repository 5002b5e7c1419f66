package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/types"
)

// RuntimeAPI is the subset of the inference runtime client the endpoint
// backend uses. Tests substitute a fake.
type RuntimeAPI interface {
	InvokeEndpointAsync(ctx context.Context, in *sagemakerruntime.InvokeEndpointAsyncInput, opts ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointAsyncOutput, error)
}

// StoreOpener opens an object store for a bucket. The async endpoint writes
// its outputs to a bucket chosen at endpoint configuration time, which need
// not be the pipeline's own bucket.
type StoreOpener func(ctx context.Context, bucket string) (*objectstore.Store, error)

// AsyncEndpointConfig configures the async-endpoint summarizer.
type AsyncEndpointConfig struct {
	Region       string
	EndpointName string
	// Bucket and InputPrefix locate where invocation payloads are staged.
	Bucket      string
	InputPrefix string
	MaxWords    int
	Wait        objectstore.WaitConfig
}

// AsyncEndpoint summarizes articles through a hosted asynchronous inference
// endpoint: the payload is staged to object storage, the endpoint is invoked
// with its location, and the output location is polled until the result file
// appears.
type AsyncEndpoint struct {
	runtime     RuntimeAPI
	store       *objectstore.Store
	openStore   StoreOpener
	endpoint    string
	inputPrefix string
	maxWords    int
	wait        objectstore.WaitConfig
}

// NewAsyncEndpoint creates an async-endpoint summarizer using the default
// shared-config credential chain.
func NewAsyncEndpoint(ctx context.Context, cfg AsyncEndpointConfig) (*AsyncEndpoint, error) {
	if cfg.EndpointName == "" {
		return nil, errors.New("endpoint name is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{Bucket: cfg.Bucket, Region: cfg.Region})
	if err != nil {
		return nil, err
	}

	opener := func(ctx context.Context, bucket string) (*objectstore.Store, error) {
		return objectstore.New(ctx, objectstore.Config{Bucket: bucket, Region: cfg.Region})
	}

	return newAsyncEndpoint(sagemakerruntime.NewFromConfig(awsCfg), store, opener, cfg), nil
}

// newAsyncEndpoint wires an AsyncEndpoint from its parts. Used by tests.
func newAsyncEndpoint(runtime RuntimeAPI, store *objectstore.Store, opener StoreOpener, cfg AsyncEndpointConfig) *AsyncEndpoint {
	maxWords := cfg.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	inputPrefix := cfg.InputPrefix
	if inputPrefix == "" {
		inputPrefix = "async-inference/input"
	}

	return &AsyncEndpoint{
		runtime:     runtime,
		store:       store,
		openStore:   opener,
		endpoint:    cfg.EndpointName,
		inputPrefix: inputPrefix,
		maxWords:    maxWords,
		wait:        cfg.Wait,
	}
}

// endpointPayload is the request body the hosted summarization model expects.
type endpointPayload struct {
	Inputs     string             `json:"inputs"`
	Parameters endpointParameters `json:"parameters"`
}

type endpointParameters struct {
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

// endpointResult mirrors the output file the hosted summarization model
// writes: a list with one generated summary.
type endpointResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// Summarize runs one article through the async endpoint and blocks until the
// output object appears or the polling budget runs out.
func (a *AsyncEndpoint) Summarize(ctx context.Context, article types.Article, text string) (*types.Summary, error) {
	text = truncateInput(text, summaryInputLimit)

	payload, err := json.Marshal(endpointPayload{
		Inputs: text,
		Parameters: endpointParameters{
			// max_length counts tokens; leave headroom over the word budget.
			MaxLength: a.maxWords * 2,
			DoSample:  false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", article.ID, err)
	}

	inputKey := objectstore.JoinKey(a.inputPrefix, article.ID+".json")
	if err := a.store.Upload(ctx, inputKey, strings.NewReader(string(payload))); err != nil {
		return nil, err
	}

	out, err := a.runtime.InvokeEndpointAsync(ctx, &sagemakerruntime.InvokeEndpointAsyncInput{
		EndpointName:  aws.String(a.endpoint),
		InputLocation: aws.String(a.store.URI(inputKey)),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return nil, &APICallError{Message: fmt.Sprintf("async invocation for %s", article.ID), Cause: err}
	}
	if out.OutputLocation == nil {
		return nil, &APICallError{Message: fmt.Sprintf("no output location returned for %s", article.ID)}
	}

	body, err := a.waitForOutput(ctx, article.ID, aws.ToString(out.OutputLocation), aws.ToString(out.FailureLocation))
	if err != nil {
		return nil, err
	}

	summary, err := parseEndpointResult(body)
	if err != nil {
		return nil, err
	}

	return newSummary(article.ID, a.endpoint, summary), nil
}

// Close is a no-op; the endpoint itself is managed outside this process.
func (a *AsyncEndpoint) Close() error {
	return nil
}

// waitForOutput polls the invocation's output location. If the budget runs
// out it checks the failure location for a provider error message.
func (a *AsyncEndpoint) waitForOutput(ctx context.Context, articleID, outputURI, failureURI string) ([]byte, error) {
	outStore, outKey, err := a.storeFor(ctx, outputURI)
	if err != nil {
		return nil, err
	}

	waitErr := outStore.WaitForKey(ctx, outKey, a.wait)
	if waitErr == nil {
		body, err := outStore.Download(ctx, outKey)
		if err != nil {
			return nil, err
		}
		defer func() { _ = body.Close() }()
		return io.ReadAll(body)
	}

	var timeout *objectstore.WaitTimeoutError
	if errors.As(waitErr, &timeout) && failureURI != "" {
		if msg := a.readFailure(ctx, failureURI); msg != "" {
			return nil, &InferenceFailedError{ArticleID: articleID, Message: msg}
		}
	}
	return nil, waitErr
}

// readFailure fetches the failure artifact if the endpoint wrote one.
func (a *AsyncEndpoint) readFailure(ctx context.Context, failureURI string) string {
	failStore, failKey, err := a.storeFor(ctx, failureURI)
	if err != nil {
		return ""
	}
	ok, err := failStore.Exists(ctx, failKey)
	if err != nil || !ok {
		return ""
	}
	body, err := failStore.Download(ctx, failKey)
	if err != nil {
		return ""
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// storeFor resolves an s3 URI to a store and key, reusing the staging store
// when the bucket matches.
func (a *AsyncEndpoint) storeFor(ctx context.Context, uri string) (*objectstore.Store, string, error) {
	bucket, key, err := objectstore.ParseURI(uri)
	if err != nil {
		return nil, "", err
	}
	if bucket == a.store.Bucket() {
		return a.store, key, nil
	}
	store, err := a.openStore(ctx, bucket)
	if err != nil {
		return nil, "", err
	}
	return store, key, nil
}

// parseEndpointResult extracts the summary text from the output file. The
// hosted model writes either a single object or a one-element list.
func parseEndpointResult(data []byte) (string, error) {
	pick := func(r endpointResult) string {
		if r.SummaryText != "" {
			return r.SummaryText
		}
		return r.GeneratedText
	}

	var list []endpointResult
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		if text := strings.TrimSpace(pick(list[0])); text != "" {
			return text, nil
		}
		return "", &ParseError{Message: "output contained no summary text"}
	}

	var single endpointResult
	if err := json.Unmarshal(data, &single); err != nil {
		return "", &ParseError{Message: "unrecognized output format", Cause: err}
	}
	if text := strings.TrimSpace(pick(single)); text != "" {
		return text, nil
	}
	return "", &ParseError{Message: "output contained no summary text"}
}
