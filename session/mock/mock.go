package mock

import "context"

type (
	RenderDelegate func(context.Context, string) (string, error)
	CloseDelegate  func() error
)

type Renderer struct {
	RenderFn RenderDelegate
	CloseFn  CloseDelegate
}

func (m *Renderer) Render(ctx context.Context, url string) (string, error) {
	if m.RenderFn != nil {
		return m.RenderFn(ctx, url)
	}

	return "", nil
}

func (m *Renderer) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}

	return nil
}
