package ranking

// MaskSupplier hides a supplier identity for public display during the
// dispute. Registry numbers (CNPJ-sized, 14+ chars) keep only the last four
// digits; long names keep only the first three characters.
func MaskSupplier(identifier string) string {
	if len(identifier) >= 14 {
		return "***" + identifier[len(identifier)-4:]
	}
	if len(identifier) > 10 {
		return identifier[:3] + "***"
	}
	return identifier
}
