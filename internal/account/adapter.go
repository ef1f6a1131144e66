package account

import (
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/provider"
)

// adapter exposes an Account through the provider mechanism.
type adapter struct {
	acc     *Account
	enabled func() bool
}

var _ provider.Provider = (*adapter)(nil)

func (p *adapter) Name() string { return "account:" + p.acc.owner }

func (p *adapter) Provide(req provider.Request) (string, error) {
	if !p.enabled() || req.Target == nil {
		return "", nil
	}
	md, ok := p.acc.Metadata(req.Target.Path)
	if !ok {
		return "", nil
	}

	switch req.SubtargetKind() {
	case models.SubtargetNone:
		if req.Link.Path == "" || md.MathLink == nil {
			return "", nil
		}
		return *md.MathLink, nil

	case models.SubtargetBlock:
		label := md.MathLinkBlocks[req.Subtarget.BlockID]
		if label == "" {
			return "", nil
		}
		p.acc.mu.RLock()
		prefixer, blockPrefix, withFile := p.acc.prefixer, p.acc.blockPrefix, p.acc.enableFileNameBlockLinks
		p.acc.mu.RUnlock()

		if prefixer != nil {
			if prefix, ok := prefixer(req.Source, req.Target, req.Subtarget); ok {
				return prefix + label, nil
			}
			return label, nil
		}
		label = blockPrefix + label
		if withFile {
			fileLabel := req.Link.Path
			if md.MathLink != nil && *md.MathLink != "" {
				fileLabel = *md.MathLink
			}
			if fileLabel != "" {
				label = fileLabel + " > " + label
			}
		}
		return label, nil
	}

	// Headings are only labelled by the native provider.
	return "", nil
}
