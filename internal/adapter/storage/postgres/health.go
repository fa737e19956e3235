package postgres

import "context"

// HealthCheck reports whether the order and wallet tables are reachable.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping runs a cheap read against the wallets table, so a database without
// migrations applied reports unhealthy too.
func (h *HealthCheck) Ping(ctx context.Context) error {
	_, err := h.pool.Exec(ctx, "SELECT 1 FROM wallets LIMIT 1")
	return err
}

func (h *HealthCheck) Name() string {
	return "postgres"
}
