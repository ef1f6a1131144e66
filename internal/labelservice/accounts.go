package labelservice

import (
	"context"
	"sort"

	"github.com/starford/mathlinks/internal/account"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/provider"
)

// AccountMetadata is the stored record of one file in an account.
type AccountMetadata struct {
	Caller    string          `json:"caller"`
	AccountID string          `json:"account_id"`
	Path      string          `json:"path"`
	Metadata  models.Metadata `json:"metadata"`
}

// owner returns the lifecycle object standing in for a remote caller.
func (s *Service) owner(caller string) *provider.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[caller]
	if !ok {
		o = provider.NewOwner(caller)
		s.owners[caller] = o
	}
	return o
}

func (s *Service) dropOwner(caller string) {
	s.mu.Lock()
	delete(s.owners, caller)
	s.mu.Unlock()
}

// UpdateAccountMetadata merges patch into caller's record for path,
// creating the account on first use.
func (s *Service) UpdateAccountMetadata(_ context.Context, caller, path string, patch models.Metadata) (*AccountMetadata, error) {
	acc, err := s.accounts.GetAccount(s.owner(caller))
	if err != nil {
		return nil, err
	}
	if err := acc.Update(path, patch); err != nil {
		return nil, err
	}
	md, _ := acc.Metadata(path)
	return &AccountMetadata{Caller: caller, AccountID: acc.ID(), Path: path, Metadata: md}, nil
}

// GetAccountMetadata returns caller's record for path.
func (s *Service) GetAccountMetadata(_ context.Context, caller, path string) (*AccountMetadata, error) {
	acc, err := s.lookup(caller)
	if err != nil {
		return nil, err
	}
	if _, _, err := acc.Get(path, ""); err != nil {
		return nil, err
	}
	md, _ := acc.Metadata(path)
	return &AccountMetadata{Caller: caller, AccountID: acc.ID(), Path: path, Metadata: md}, nil
}

// AccountPaths lists, sorted, the files caller holds a record for.
func (s *Service) AccountPaths(_ context.Context, caller string) ([]string, error) {
	acc, err := s.lookup(caller)
	if err != nil {
		return nil, err
	}
	paths := acc.Paths()
	sort.Strings(paths)
	return paths, nil
}

// GetAccountValue returns one value of caller's record: the mathLink, or a
// block label when blockID is set.
func (s *Service) GetAccountValue(_ context.Context, caller, path, blockID string) (string, bool, error) {
	acc, err := s.lookup(caller)
	if err != nil {
		return "", false, err
	}
	return acc.Get(path, blockID)
}

// DeleteAccountMetadata removes the record, a field or a block of caller's
// record for path.
func (s *Service) DeleteAccountMetadata(_ context.Context, caller, path, which string) error {
	acc, err := s.lookup(caller)
	if err != nil {
		return err
	}
	return acc.Delete(path, which)
}

// DeleteAccount removes caller's account and its provider.
func (s *Service) DeleteAccount(_ context.Context, caller string) error {
	if err := s.accounts.DeleteAccount(caller); err != nil {
		return err
	}
	s.dropOwner(caller)
	return nil
}

func (s *Service) lookup(caller string) (*account.Account, error) {
	if !s.accounts.Enabled() {
		// GetAccount reports the disabled API with the right error.
		return s.accounts.GetAccount(provider.NewOwner(caller))
	}
	return s.accounts.Lookup(caller)
}
