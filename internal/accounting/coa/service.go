package coa

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// Service implements the chart-of-accounts operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateGroupInput carries fields for a new top-level group.
type CreateGroupInput struct {
	Name string
	Kind GroupKind
}

func (s *Service) CreateGroup(ctx context.Context, companyID int64, in CreateGroupInput) (Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Group{}, errors.New("coa: group name required")
	}
	if !in.Kind.Valid() {
		return Group{}, errors.New("coa: unknown group kind")
	}
	return s.repo.CreateGroup(ctx, Group{CompanyID: companyID, Name: name, Kind: in.Kind})
}

// UpdateGroup renames a group. Changing the kind is rejected once any
// voucher line has been posted beneath it: reclassifying would silently
// rewrite historical reports.
func (s *Service) UpdateGroup(ctx context.Context, companyID, id int64, in CreateGroupInput) (Group, error) {
	current, err := s.repo.GetGroup(ctx, companyID, id)
	if err != nil {
		return Group{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Group{}, errors.New("coa: group name required")
	}
	if !in.Kind.Valid() {
		return Group{}, errors.New("coa: unknown group kind")
	}
	if in.Kind != current.Kind {
		posted, err := s.repo.GroupHasPostings(ctx, companyID, id)
		if err != nil {
			return Group{}, err
		}
		if posted {
			return Group{}, shared.ErrKindLocked
		}
	}
	current.Name = name
	current.Kind = in.Kind
	if err := s.repo.UpdateGroup(ctx, current); err != nil {
		return Group{}, err
	}
	return current, nil
}

// CreateSubGroupInput carries fields for a new intermediate node.
type CreateSubGroupInput struct {
	Name           string
	GroupID        int64
	Classification Classification
}

func (s *Service) CreateSubGroup(ctx context.Context, companyID int64, in CreateSubGroupInput) (SubGroup, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return SubGroup{}, errors.New("coa: subgroup name required")
	}
	class := in.Classification
	if class == "" {
		class = ClassNone
	}
	if !class.Valid() {
		return SubGroup{}, errors.New("coa: unknown classification")
	}
	if _, err := s.repo.GetGroup(ctx, companyID, in.GroupID); err != nil {
		return SubGroup{}, err
	}
	return s.repo.CreateSubGroup(ctx, SubGroup{
		CompanyID:      companyID,
		GroupID:        in.GroupID,
		Name:           name,
		Classification: class,
	})
}

// CreateLedgerInput carries fields for a new ledger. Exactly one of GroupID
// or SubGroupID must be set; the normal side is derived, never accepted.
type CreateLedgerInput struct {
	Name           string
	GroupID        *int64
	SubGroupID     *int64
	OpeningBalance decimal.Decimal
	IsCash         bool
	IsTax          bool
}

func (s *Service) CreateLedger(ctx context.Context, companyID int64, in CreateLedgerInput) (Ledger, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Ledger{}, errors.New("coa: ledger name required")
	}
	if (in.GroupID == nil) == (in.SubGroupID == nil) {
		return Ledger{}, shared.ErrInvalidParent
	}
	if in.GroupID != nil {
		if _, err := s.repo.GetGroup(ctx, companyID, *in.GroupID); err != nil {
			return Ledger{}, err
		}
	} else {
		if _, err := s.repo.GetSubGroup(ctx, companyID, *in.SubGroupID); err != nil {
			return Ledger{}, err
		}
	}
	return s.repo.CreateLedger(ctx, Ledger{
		CompanyID:      companyID,
		GroupID:        in.GroupID,
		SubGroupID:     in.SubGroupID,
		Name:           name,
		OpeningBalance: in.OpeningBalance,
		IsCash:         in.IsCash,
		IsTax:          in.IsTax,
	})
}

// DeleteLedger soft-deletes a ledger. A ledger with posting history can
// never be removed; history must stay reconstructable.
func (s *Service) DeleteLedger(ctx context.Context, companyID, id int64) error {
	if _, err := s.repo.GetLedger(ctx, companyID, id); err != nil {
		return err
	}
	posted, err := s.repo.LedgerHasPostings(ctx, companyID, id)
	if err != nil {
		return err
	}
	if posted {
		return shared.ErrHasPostings
	}
	return s.repo.DeactivateLedger(ctx, companyID, id)
}

// GetLedgerInfo resolves a ledger with its inherited kind and normal side.
func (s *Service) GetLedgerInfo(ctx context.Context, companyID, id int64) (LedgerInfo, error) {
	return s.repo.GetLedgerInfo(ctx, companyID, id)
}

// ListLedgerInfo resolves every ledger of the company.
func (s *Service) ListLedgerInfo(ctx context.Context, companyID int64) ([]LedgerInfo, error) {
	return s.repo.ListLedgerInfo(ctx, companyID)
}

// ListHierarchy assembles the Group -> SubGroup -> Ledger tree.
func (s *Service) ListHierarchy(ctx context.Context, companyID int64) ([]HierarchyGroup, error) {
	groups, err := s.repo.ListGroups(ctx, companyID)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.ListSubGroups(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.repo.ListLedgers(ctx, companyID)
	if err != nil {
		return nil, err
	}

	tree := make([]HierarchyGroup, 0, len(groups))
	groupIdx := make(map[int64]int, len(groups))
	for _, g := range groups {
		groupIdx[g.ID] = len(tree)
		tree = append(tree, HierarchyGroup{ID: g.ID, Name: g.Name, Kind: g.Kind})
	}
	subIdx := make(map[int64][2]int, len(subs))
	for _, sg := range subs {
		gi, ok := groupIdx[sg.GroupID]
		if !ok {
			continue
		}
		subIdx[sg.ID] = [2]int{gi, len(tree[gi].SubGroups)}
		tree[gi].SubGroups = append(tree[gi].SubGroups, HierarchySubGroup{
			ID:             sg.ID,
			Name:           sg.Name,
			Classification: sg.Classification,
		})
	}
	for _, l := range ledgers {
		leaf := HierarchyLedger{
			ID:             l.ID,
			Name:           l.Name,
			OpeningBalance: l.OpeningBalance,
			IsCash:         l.IsCash,
			IsTax:          l.IsTax,
			IsActive:       l.IsActive,
		}
		switch {
		case l.SubGroupID != nil:
			if pos, ok := subIdx[*l.SubGroupID]; ok {
				tree[pos[0]].SubGroups[pos[1]].Ledgers = append(tree[pos[0]].SubGroups[pos[1]].Ledgers, leaf)
			}
		case l.GroupID != nil:
			if gi, ok := groupIdx[*l.GroupID]; ok {
				tree[gi].Ledgers = append(tree[gi].Ledgers, leaf)
			}
		}
	}
	return tree, nil
}
