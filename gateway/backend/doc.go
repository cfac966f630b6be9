// Package backend contém implementações de domain.Backend: a tabela estática da
// aplicação de exemplo, um upstream HTTP e um adapter de função.
package backend
