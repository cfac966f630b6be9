package gateway

import "strconv"

// formatação de valores numéricos em headers, sem fmt.

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }
