// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryCounter: contador por chave em memória, protegido por mutex
//   - RedisCounter: o mesmo contador num script Lua, compartilhado entre instâncias
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas de decisão
//   - SlotPool: semáforo simples para limite de concorrência
package infra
