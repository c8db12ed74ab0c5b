package csvfile

import (
	"fmt"
	"os"
)

// WritePolicy decides how an existing day file is treated.
type WritePolicy string

const (
	PolicyOverwrite WritePolicy = "overwrite"
	PolicyAppend    WritePolicy = "append"
	PolicyReject    WritePolicy = "reject"
)

// ParseWritePolicy converts a configuration string into a WritePolicy.
func ParseWritePolicy(s string) (WritePolicy, error) {
	p := WritePolicy(s)
	if !p.isValid() {
		return "", fmt.Errorf("invalid write policy %q", s)
	}

	return p, nil
}

func (p WritePolicy) isValid() bool {
	switch p {
	case PolicyOverwrite, PolicyAppend, PolicyReject:
		return true
	default:
		return false
	}
}

// Option is a functional option for configuring a [Writer].
type Option func(*Options)

// Options holds the configuration for a [Writer].
type Options struct {
	policy   WritePolicy
	fileMode os.FileMode
	dirMode  os.FileMode
	useCRLF  bool
}

func newOptions() *Options {
	return &Options{
		policy:   PolicyOverwrite,
		fileMode: 0o644,
		dirMode:  0o755,
	}
}

func (o *Options) validate() error {
	if !o.policy.isValid() {
		return fmt.Errorf("invalid write policy %q", o.policy)
	}

	if o.fileMode&0o200 == 0 {
		return fmt.Errorf("file mode %v is not writable by owner", o.fileMode)
	}

	return nil
}

// WithPolicy sets the policy applied when a day file already exists. The
// default is [PolicyOverwrite].
func WithPolicy(p WritePolicy) Option {
	return func(o *Options) {
		o.policy = p
	}
}

// WithFileMode sets the permission bits of newly created files. Default: 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(o *Options) {
		o.fileMode = mode
	}
}

// WithDirMode sets the permission bits of a newly created output directory.
// Default: 0755.
func WithDirMode(mode os.FileMode) Option {
	return func(o *Options) {
		o.dirMode = mode
	}
}

// WithCRLF terminates rows with \r\n instead of \n.
func WithCRLF(enabled bool) Option {
	return func(o *Options) {
		o.useCRLF = enabled
	}
}
