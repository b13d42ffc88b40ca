// Package ordering applies an owner's manual display order to categories
// and items.
package ordering

import (
	"fmt"
)

// Actor is the authenticated owner issuing a reorder.
type Actor struct {
	UserID int64
}

// Repository is the persistence port the Coordinator works through.
//
// The lookup methods return ok=false when the entity does not exist. The
// Apply methods must write every rank in a single transaction, restricted
// to the given parent, and fail without writing anything if any id no
// longer belongs to it.
type Repository interface {
	BusinessOwner(businessID int64) (ownerID int64, ok bool, err error)
	CategoryBusiness(categoryID int64) (businessID int64, ok bool, err error)
	ItemCategory(itemID int64) (categoryID int64, ok bool, err error)
	ApplyCategoryRanks(businessID int64, ids []int64) error
	ApplyItemRanks(categoryID int64, ids []int64) error
}

// Coordinator validates reorder requests and persists the resulting ranks.
// It holds no state of its own; concurrent calls on the same parent are
// last-write-wins and calls on different parents never wait on each other.
type Coordinator struct {
	repo Repository
}

func NewCoordinator(repo Repository) *Coordinator {
	return &Coordinator{repo: repo}
}

// ReorderCategories assigns ranks 0..n-1 to the business's categories in
// the order given. Categories not listed keep their current rank.
func (c *Coordinator) ReorderCategories(actor Actor, businessID int64, ids []int64) error {
	if err := c.authorizeBusiness(actor, businessID); err != nil {
		return err
	}
	if err := checkDuplicates(ids); err != nil {
		return err
	}

	for _, id := range ids {
		owner, ok, err := c.repo.CategoryBusiness(id)
		if err != nil {
			return fmt.Errorf("resolve category %d: %w", id, err)
		}
		if !ok {
			return newError(KindNotFound, id, "category not found")
		}
		if owner != businessID {
			return newError(KindOutOfScope, id, "category belongs to another business")
		}
	}

	if len(ids) == 0 {
		return nil
	}
	return c.repo.ApplyCategoryRanks(businessID, ids)
}

// ReorderItems assigns ranks 0..n-1 to items of categoryID in the order
// given. The category must belong to businessID, which the actor must own.
func (c *Coordinator) ReorderItems(actor Actor, businessID, categoryID int64, ids []int64) error {
	if err := c.authorizeBusiness(actor, businessID); err != nil {
		return err
	}

	catBusiness, ok, err := c.repo.CategoryBusiness(categoryID)
	if err != nil {
		return fmt.Errorf("resolve category %d: %w", categoryID, err)
	}
	if !ok {
		return newError(KindNotFound, categoryID, "category not found")
	}
	if catBusiness != businessID {
		return newError(KindUnauthorized, categoryID, "category belongs to another business")
	}

	if err := checkDuplicates(ids); err != nil {
		return err
	}

	for _, id := range ids {
		parent, ok, err := c.repo.ItemCategory(id)
		if err != nil {
			return fmt.Errorf("resolve item %d: %w", id, err)
		}
		if !ok {
			return newError(KindNotFound, id, "item not found")
		}
		if parent != categoryID {
			return newError(KindOutOfScope, id, "item belongs to another category")
		}
	}

	if len(ids) == 0 {
		return nil
	}
	return c.repo.ApplyItemRanks(categoryID, ids)
}

func (c *Coordinator) authorizeBusiness(actor Actor, businessID int64) error {
	owner, ok, err := c.repo.BusinessOwner(businessID)
	if err != nil {
		return fmt.Errorf("resolve business %d: %w", businessID, err)
	}
	if !ok || actor.UserID == 0 || owner != actor.UserID {
		return newError(KindUnauthorized, businessID, "business is not owned by the requester")
	}
	return nil
}

func checkDuplicates(ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return newError(KindValidation, id, "id listed more than once")
		}
		seen[id] = struct{}{}
	}
	return nil
}
