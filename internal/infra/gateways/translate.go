package gateways

import "shaparak-pay/internal/infra/i18n"

// translateCode maps a bank status/result code to a localized message,
// falling back to the generic failure message for codes the catalog does not
// know. This is the only place bank vocabulary reaches user-facing text.
func translateCode(tr *i18n.Translator, bank, code string) string {
	key := bank + ".code_" + code
	if tr.Has(key) {
		return tr.T(key)
	}
	return tr.T("payment_failed")
}
