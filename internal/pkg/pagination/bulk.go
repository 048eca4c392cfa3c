package pagination

import "context"

// EachPage hands every page fetched from the current cursor to fn, in
// server order, until fn returns false or the list ends.
func EachPage[T any](ctx context.Context, l *Loader[T], fn func(items []T) bool) error {
	for l.HasNext() {
		page, err := l.LoadNext(ctx, UpdateModeNormal)
		if err != nil {
			return err
		}
		if page == nil {
			continue
		}

		if !fn(page.Items) {
			return nil
		}
	}

	return nil
}

// LoadAll drains the loader, concatenating pages in server order.
func LoadAll[T any](ctx context.Context, l *Loader[T]) ([]T, error) {
	result := []T{}
	err := EachPage(ctx, l, func(items []T) bool {
		result = append(result, items...)
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// LoadUpTo collects at most max items. Items past max in the last fetched
// page are dropped.
func LoadUpTo[T any](ctx context.Context, l *Loader[T], max int) ([]T, error) {
	result := []T{}
	if max <= 0 {
		return result, nil
	}

	err := EachPage(ctx, l, func(items []T) bool {
		for _, item := range items {
			result = append(result, item)
			if len(result) == max {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindFirst fetches pages until pred matches an item or the list ends.
func FindFirst[T any](ctx context.Context, l *Loader[T], pred func(T) bool) (T, bool, error) {
	var found T
	ok := false
	err := EachPage(ctx, l, func(items []T) bool {
		for _, item := range items {
			if pred(item) {
				found, ok = item, true
				return false
			}
		}
		return true
	})
	if err != nil {
		var zero T
		return zero, false, err
	}

	return found, ok, nil
}
