package rlsync_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/internal/withdb"
)

func TestMissingPolicies(t *testing.T) {
	t.Parallel()
	source := []rlsync.Policy{
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "users", Name: "a"}},
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "users", Name: "b"}},
		{PolicyKey: rlsync.PolicyKey{Schema: "app", Table: "documents", Name: "c"}},
	}
	target := []rlsync.PolicyKey{
		{Schema: "public", Table: "users", Name: "a"},
		{Schema: "public", Table: "users", Name: "b"},
	}
	missing := rlsync.MissingPolicies(source, target)
	check.Equal(t, []rlsync.PolicyKey{
		{Schema: "app", Table: "documents", Name: "c"},
	}, missing)
}

func TestMissingPoliciesNoneMissing(t *testing.T) {
	t.Parallel()
	source := []rlsync.Policy{
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "users", Name: "a"}},
	}
	target := []rlsync.PolicyKey{
		{Schema: "public", Table: "users", Name: "a"},
		{Schema: "public", Table: "users", Name: "extra"},
	}
	// Extra policies on the target are not a discrepancy.
	check.Equal(t, 0, len(rlsync.MissingPolicies(source, target)))
}

func TestMissingPoliciesSorted(t *testing.T) {
	t.Parallel()
	source := []rlsync.Policy{
		{PolicyKey: rlsync.PolicyKey{Schema: "public", Table: "users", Name: "z"}},
		{PolicyKey: rlsync.PolicyKey{Schema: "app", Table: "documents", Name: "a"}},
	}
	missing := rlsync.MissingPolicies(source, nil)
	check.Equal(t, []rlsync.PolicyKey{
		{Schema: "app", Table: "documents", Name: "a"},
		{Schema: "public", Table: "users", Name: "z"},
	}, missing)
}

func TestTargetPolicyString(t *testing.T) {
	t.Parallel()
	p := rlsync.TargetPolicy{
		PolicyKey:  rlsync.PolicyKey{Schema: "public", Table: "users", Name: "users_select"},
		Permissive: true,
		Command:    "SELECT",
		Using:      "(org_id = 7)",
	}
	check.Equal(t,
		"CREATE POLICY users_select ON public.users FOR SELECT USING ((org_id = 7));",
		p.String())

	p = rlsync.TargetPolicy{
		PolicyKey:  rlsync.PolicyKey{Schema: "app", Table: "documents", Name: "documents_owner"},
		Permissive: false,
		Command:    "ALL",
		Roles:      []string{"authenticated"},
		Using:      "(owner_id = 7)",
		WithCheck:  "(owner_id = 7)",
	}
	check.Equal(t,
		"CREATE POLICY documents_owner ON app.documents AS RESTRICTIVE TO authenticated USING ((owner_id = 7)) WITH CHECK ((owner_id = 7));",
		p.String())
}

func TestTargetPolicies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	err := withdb.WithDB(ctx, "pgx", func(db *sql.DB) error {
		setup := []string{
			"CREATE SCHEMA archive",
			"CREATE TABLE public.users (id int, org_id int)",
			"CREATE TABLE archive.records (id int)",
			"ALTER TABLE public.users ENABLE ROW LEVEL SECURITY",
			"ALTER TABLE archive.records ENABLE ROW LEVEL SECURITY",
			"CREATE POLICY users_select ON public.users FOR SELECT USING (org_id = 7)",
			"CREATE POLICY users_all ON public.users USING (true)",
			"CREATE POLICY records_read ON archive.records FOR SELECT USING (true)",
		}
		for _, stmt := range setup {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		keys, err := rlsync.TargetPolicies(ctx, db, []string{"archive"})
		assert.Nil(t, err)
		check.Equal(t, []rlsync.PolicyKey{
			{Schema: "public", Table: "users", Name: "users_all"},
			{Schema: "public", Table: "users", Name: "users_select"},
		}, keys)

		keys, err = rlsync.TargetPolicies(ctx, db, nil)
		assert.Nil(t, err)
		check.Equal(t, 3, len(keys))
		return nil
	})
	assert.Nil(t, err)
}

func TestLoadTargetPolicies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	err := withdb.WithDB(ctx, "pgx", func(db *sql.DB) error {
		if err := fixtureRoles(ctx, db); err != nil {
			return err
		}
		setup := []string{
			"CREATE TABLE public.users (id int, org_id int)",
			"ALTER TABLE public.users ENABLE ROW LEVEL SECURITY",
			"CREATE POLICY users_select ON public.users FOR SELECT USING (org_id = 7)",
			"CREATE POLICY users_update ON public.users FOR UPDATE TO authenticated, readonly USING (org_id = 7)",
		}
		for _, stmt := range setup {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		policies, err := rlsync.LoadTargetPolicies(ctx, db, nil)
		assert.Nil(t, err)
		assert.Equal(t, 2, len(policies))

		p := policies[0]
		check.Equal(t, rlsync.PolicyKey{Schema: "public", Table: "users", Name: "users_select"}, p.PolicyKey)
		check.Equal(t, true, p.Permissive)
		check.Equal(t, "SELECT", p.Command)
		// TO public is the default; the pseudo-role is not reported.
		check.Equal(t, 0, len(p.Roles))
		check.Equal(t, "(org_id = 7)", p.Using)
		check.Equal(t, "", p.WithCheck)

		p = policies[1]
		check.Equal(t, rlsync.PolicyKey{Schema: "public", Table: "users", Name: "users_update"}, p.PolicyKey)
		check.Equal(t, "UPDATE", p.Command)
		check.Equal(t, []string{"authenticated", "readonly"}, p.Roles)
		return nil
	})
	assert.Nil(t, err)
}
