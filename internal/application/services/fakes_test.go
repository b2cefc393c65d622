package services

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// fakeSource serves documents from memory.
type fakeSource struct {
	files   map[string]string
	listErr error
}

func (f *fakeSource) List(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeSource) Read(_ context.Context, _, name string) (string, error) {
	content, ok := f.files[name]
	if !ok {
		return "", os.ErrNotExist
	}
	return content, nil
}

func (f *fakeSource) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	content, err := f.Read(ctx, folder, name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// lineExtractor reads "id|parent" documents.
type lineExtractor struct{}

func (lineExtractor) Extract(sourceFile string, r io.Reader) (entities.PolicyDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return entities.PolicyDocument{}, err
	}
	id, parent, found := strings.Cut(strings.TrimSpace(string(data)), "|")
	if !found {
		return entities.PolicyDocument{}, errors.New("malformed document")
	}
	return entities.PolicyDocument{ID: id, ParentID: parent, SourceFile: sourceFile}, nil
}

type fakeSettings struct {
	settings *entities.AppSettings
	err      error
}

func (f *fakeSettings) Load(_ context.Context, _, _ string) (*entities.AppSettings, error) {
	return f.settings, f.err
}

type fakeSink struct {
	written map[string]string
	order   []string
}

func (f *fakeSink) Write(_ context.Context, _, name, content string) error {
	if f.written == nil {
		f.written = make(map[string]string)
	}
	f.written[name] = content
	f.order = append(f.order, name)
	return nil
}

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) Token(_ context.Context, _ dto.Credentials) (string, error) {
	f.calls++
	return f.token, f.err
}

// fakeUploader records uploads and fails for configured policy ids.
type fakeUploader struct {
	mu       sync.Mutex
	token    string
	uploaded []string
	bodies   map[string]string
	failOn   map[string]error
}

func (f *fakeUploader) NewUploader(accessToken string) ports.Uploader {
	f.token = accessToken
	return f
}

func (f *fakeUploader) Upload(_ context.Context, policyID string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, policyID)
	if f.bodies == nil {
		f.bodies = make(map[string]string)
	}
	f.bodies[policyID] = string(data)
	return f.failOn[policyID]
}

// inlineExecutors runs plans one document at a time.
type inlineExecutors struct {
	requested dto.ExecutionOptions
}

func (f *inlineExecutors) NewExecutor(opts dto.ExecutionOptions) ports.PlanExecutor {
	f.requested = opts
	return inlineExecutor{}
}

type inlineExecutor struct{}

func (inlineExecutor) Execute(ctx context.Context, plan *entities.DeploymentPlan, upload ports.UploadFunc) (entities.PublishReport, error) {
	report := entities.PublishReport{}
	for _, wave := range plan.Waves {
		for _, doc := range wave.Documents {
			if err := upload(ctx, doc); err != nil {
				report.FailedID = doc.ID
				return report, err
			}
			report.Completed++
			report.Published = append(report.Published, doc.ID)
		}
	}
	return report, nil
}

type fakeConfirmer struct {
	answer  bool
	err     error
	asked   int
	message string
}

func (f *fakeConfirmer) Confirm(_ context.Context, message string) (bool, error) {
	f.asked++
	f.message = message
	return f.answer, f.err
}

type fakeSensitive struct {
	values []string
}

func (f *fakeSensitive) Track(value string) {
	f.values = append(f.values, value)
}

func (f *fakeSensitive) AllValues() []string {
	return f.values
}
