package vouchers

import (
	"fmt"

	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// kindSideRule demands at least one line on Side whose ledger kind is in
// Kinds.
type kindSideRule struct {
	Side  Side
	Kinds []coa.GroupKind
	Label string
}

// Policy declares the per-type shape rules checked after the generic
// balance validation. Rules are data; adding a voucher type means adding a
// table entry, not another code path.
type Policy struct {
	// AllCash requires every line to hit a cash/bank-flagged ledger.
	AllCash bool
	// RequireCounterparty requires the voucher to name a vendor/customer.
	RequireCounterparty bool
	// Require lists kind/side demands, all of which must be met.
	Require []kindSideRule
}

var policyTable = map[VoucherType]Policy{
	TypeJournal: {},
	TypeExpense: {
		Require: []kindSideRule{{Side: SideDebit, Kinds: []coa.GroupKind{coa.KindExpenses}, Label: "an expense debit"}},
	},
	TypeIncome: {
		Require: []kindSideRule{{Side: SideCredit, Kinds: []coa.GroupKind{coa.KindIncome}, Label: "an income credit"}},
	},
	TypeContra: {
		AllCash: true,
	},
	TypeSale: {
		RequireCounterparty: true,
		Require:             []kindSideRule{{Side: SideCredit, Kinds: []coa.GroupKind{coa.KindIncome}, Label: "a revenue credit"}},
	},
	TypePurchase: {
		Require: []kindSideRule{{Side: SideDebit, Kinds: []coa.GroupKind{coa.KindExpenses, coa.KindAssets}, Label: "an expense or asset debit"}},
	},
	TypePOS: {
		Require: []kindSideRule{{Side: SideCredit, Kinds: []coa.GroupKind{coa.KindIncome}, Label: "a revenue credit"}},
	},
}

func policyFor(t VoucherType) (Policy, bool) {
	p, ok := policyTable[t]
	return p, ok
}

// checkPolicy applies the voucher-type policy against the resolved ledgers.
func checkPolicy(in PostingInput, ledgers map[int64]coa.LedgerInfo) error {
	policy, ok := policyFor(in.Type)
	if !ok {
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidShape, in.Type)
	}
	if policy.RequireCounterparty && in.Counterparty == "" {
		return fmt.Errorf("%w: %s voucher requires a counterparty", shared.ErrInvalidShape, in.Type)
	}
	if policy.AllCash {
		for _, line := range in.Lines {
			if !ledgers[line.LedgerID].IsCash {
				return fmt.Errorf("%w: %s voucher may only move cash/bank ledgers", shared.ErrInvalidShape, in.Type)
			}
		}
	}
	for _, rule := range policy.Require {
		if !satisfies(in.Lines, ledgers, rule) {
			return fmt.Errorf("%w: %s voucher requires %s line", shared.ErrInvalidShape, in.Type, rule.Label)
		}
	}
	return nil
}

func satisfies(lines []LineInput, ledgers map[int64]coa.LedgerInfo, rule kindSideRule) bool {
	for _, line := range lines {
		if line.Side != rule.Side {
			continue
		}
		kind := ledgers[line.LedgerID].Kind
		for _, k := range rule.Kinds {
			if kind == k {
				return true
			}
		}
	}
	return false
}
