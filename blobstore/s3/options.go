package s3

// Options configures New.
type Options struct {
	Prefix string
	Region string
	// Endpoint overrides the service URL for S3-compatible services; it
	// also switches to path-style addressing.
	Endpoint string
	Upload   UploadConfig
}

// Option mutates Options.
type Option func(*Options)

// WithPrefix sets the key prefix prepended to every blob name.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint URL.
func WithEndpoint(url string) Option {
	return func(o *Options) { o.Endpoint = url }
}

// WithUploadConfig overrides the multipart upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *Options) { o.Upload = cfg }
}
