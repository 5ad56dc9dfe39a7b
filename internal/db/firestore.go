package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"reliefnet-backend-go/internal/query"
)

const (
	usersCollection         = "users"
	userEmailsCollection    = "userEmails"
	disastersCollection     = "disasters"
	contributionsCollection = "contributions"
	rescueTeamsCollection   = "rescueTeams"
	auditLogsCollection     = "auditLogs"
)

// NewFirestoreRepositories wires every repository to the same client. The
// client is created once at process start and owned by the caller.
func NewFirestoreRepositories(client *firestore.Client) Repositories {
	return Repositories{
		Users:         NewFirestoreUserRepository(client),
		Disasters:     NewFirestoreDisasterRepository(client),
		Contributions: NewFirestoreContributionRepository(client),
		RescueTeams:   NewFirestoreRescueTeamRepository(client),
		Audit:         NewFirestoreAuditRepository(client),
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func applyEquals(q firestore.Query, f query.Filter) firestore.Query {
	for _, c := range f.Equals {
		q = q.Where(c.Field, "==", c.Value)
	}
	return q
}

// countQuery runs a server-side count aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int, error) {
	results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count aggregation: %w", err)
	}
	count, ok := results["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation: result 'all' missing")
	}
	v, ok := count.(*pb.Value)
	if !ok {
		return 0, fmt.Errorf("count aggregation: unexpected type %T", count)
	}
	return int(v.GetIntegerValue()), nil
}

// decodeAll drains iter into typed values, stamping each with its document ID.
func decodeAll[T any](iter *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer iter.Stop()
	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		v := new(T)
		if err := doc.DataTo(v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		setID(v, doc.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}

// listPage applies equality conditions and ordering server-side. Substring
// conditions have no Firestore equivalent, so when present the equality-filtered
// set is fetched and narrowed and paged in process.
func listPage[T any](
	ctx context.Context,
	base firestore.Query,
	f query.Filter,
	p query.Page,
	orderField string,
	setID func(*T, string),
	lookup func(*T) func(string) string,
) ([]*T, int, error) {
	filtered := applyEquals(base, f)
	ordered := filtered.OrderBy(orderField, firestore.Desc)

	if len(f.Contains) == 0 {
		total, err := countQuery(ctx, filtered)
		if err != nil {
			return nil, 0, err
		}
		start, end := p.Window(total)
		if start >= end {
			return []*T{}, total, nil
		}
		items, err := decodeAll(ordered.Offset(start).Limit(end-start).Documents(ctx), setID)
		if err != nil {
			return nil, 0, err
		}
		return items, total, nil
	}

	all, err := decodeAll(ordered.Documents(ctx), setID)
	if err != nil {
		return nil, 0, err
	}
	matched := make([]*T, 0, len(all))
	for _, item := range all {
		if f.Match(lookup(item)) {
			matched = append(matched, item)
		}
	}
	start, end := p.Window(len(matched))
	return matched[start:end], len(matched), nil
}

// getMany resolves document IDs in one round trip. Malformed IDs are skipped.
func getMany[T any](ctx context.Context, client *firestore.Client, collection string, ids []string, setID func(*T, string)) (map[string]*T, error) {
	out := make(map[string]*T, len(ids))
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !validDocID(id) {
			continue
		}
		seen[id] = true
		refs = append(refs, client.Collection(collection).Doc(id))
	}
	if len(refs) == 0 {
		return out, nil
	}
	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get %d %s: %w", len(refs), collection, err)
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		v := new(T)
		if err := snap.DataTo(v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		setID(v, snap.Ref.ID)
		out[snap.Ref.ID] = v
	}
	return out, nil
}
