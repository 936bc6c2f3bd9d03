package fees

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	// CallResolver returns the call specific part of an extrinsic fee.
	CallResolver interface {
		Resolve(call *types.Call) (types.Amount, error)
	}

	/*
		CallFeeResolver maps calls (module, method) to the fee category of the
		call. Calls without a route cost nothing extra.

		Routes are registered at startup, before the first Resolve call, the
		resolver is not safe for concurrent route registration.
	*/
	CallFeeResolver struct {
		registry AmountReader
		routes   map[types.CallID]Category
	}
)

var _ CallResolver = (*CallFeeResolver)(nil)

func NewCallFeeResolver(registry AmountReader) *CallFeeResolver {
	return &CallFeeResolver{
		registry: registry,
		routes:   make(map[types.CallID]Category),
	}
}

// Register routes the call to the fee category.
func (r *CallFeeResolver) Register(id types.CallID, c Category) error {
	if err := id.IsValid(); err != nil {
		return err
	}
	if err := c.IsValid(); err != nil {
		return fmt.Errorf("call %s: %w", id, err)
	}
	if existing, ok := r.routes[id]; ok {
		return fmt.Errorf("call %s is already routed to fee category %s", id, existing)
	}
	r.routes[id] = c
	return nil
}

/*
AddRoutes registers the method -> fee category table of the module.
*/
func (r *CallFeeResolver) AddRoutes(module string, routes map[string]Category) error {
	for method, c := range routes {
		if err := r.Register(types.CallID{Module: module, Method: method}, c); err != nil {
			return fmt.Errorf("registering fee routes of module %q: %w", module, err)
		}
	}
	return nil
}

/*
Resolve returns the amount of the fee category the call is routed to.
Unrouted calls resolve to zero. A routed call whose category has no entry
in the registry is an error.
*/
func (r *CallFeeResolver) Resolve(call *types.Call) (types.Amount, error) {
	c, ok := r.routes[call.ID()]
	if !ok {
		return 0, nil
	}
	amount, err := r.registry.AmountOf(c)
	if err != nil {
		return 0, fmt.Errorf("resolving fee of call %s: %w", call.ID(), err)
	}
	return amount, nil
}

// Routes returns copy of the routing table.
func (r *CallFeeResolver) Routes() map[types.CallID]Category {
	return maps.Clone(r.routes)
}

// Verify checks that every routed fee category has an entry in the registry.
func (r *CallFeeResolver) Verify() error {
	ids := make([]types.CallID, 0, len(r.routes))
	for id := range r.routes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b types.CallID) int {
		return cmp.Or(cmp.Compare(a.Module, b.Module), cmp.Compare(a.Method, b.Method))
	})
	var errs []error
	for _, id := range ids {
		if _, err := r.registry.AmountOf(r.routes[id]); err != nil {
			errs = append(errs, fmt.Errorf("call %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
