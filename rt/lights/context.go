package lights

// ResourceUploader receives view level GPU data. The lighting core never
// talks to a graphics API directly.
type ResourceUploader interface {
	Upload(name string, viewIndex int, data []float32)
}

// Context is passed to renderers for the whole frame.
type Context struct {
	Frame    int64
	Uploader ResourceUploader
}

// Upload forwards to the uploader when one is set.
func (c *Context) Upload(name string, viewIndex int, data []float32) {
	if c == nil || c.Uploader == nil {
		return
	}
	c.Uploader.Upload(name, viewIndex, data)
}
