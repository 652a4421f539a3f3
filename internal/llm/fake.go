package llm

import "context"

// FakeClient returns scripted responses for offline runs and tests.
type FakeClient struct {
	Response string
	Chunks   []string
	Err      error
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(_ context.Context, _ string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.Response == "" {
		return "", ErrEmptyResponse
	}
	return f.Response, nil
}

func (f *FakeClient) StreamText(_ context.Context, _ string, onChunk func(string) error) error {
	if f.Err != nil {
		return f.Err
	}
	for _, c := range f.Chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}
