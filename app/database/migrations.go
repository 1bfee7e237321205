package database

import (
	"database/sql"

	"github.com/Shekhar17ACS/IETE/app/config"
)

// RunMigrations creates missing tables and applies schema updates.
// Every statement is idempotent so the migration can run on each boot.
func RunMigrations(db *sql.DB) error {
	config.Log.Info().Msg("Running database migrations")

	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return err
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			config.Log.Error().Err(err).Msg("Migration statement failed")
			return err
		}
	}

	if err := addPaymentMembershipTypeColumn(db); err != nil {
		return err
	}

	config.Log.Info().Msg("Database migrations completed successfully")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		parent_id UUID REFERENCES roles(id),
		group_id UUID REFERENCES groups(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS membership_fees (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		membership_type VARCHAR(50) NOT NULL,
		min_age INT,
		max_age INT,
		fee_amount NUMERIC(10,2) NOT NULL,
		currency VARCHAR(5) NOT NULL DEFAULT 'INR',
		is_foreign_member BOOLEAN NOT NULL DEFAULT false,
		gst_percentage NUMERIC(5,2) NOT NULL DEFAULT 18,
		experience NUMERIC(5,2)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		application_id TEXT UNIQUE,
		membership_id TEXT UNIQUE,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		title VARCHAR(50),
		name TEXT NOT NULL,
		middle_name TEXT,
		last_name TEXT,
		mobile_number VARCHAR(20),
		date_of_birth DATE,
		gender VARCHAR(10),
		from_india BOOLEAN NOT NULL DEFAULT true,
		country TEXT,
		state TEXT,
		city TEXT,
		role_id UUID REFERENCES roles(id),
		membership_fee_id UUID REFERENCES membership_fees(id),
		total_experience NUMERIC(6,2) NOT NULL DEFAULT 0,
		is_approved BOOLEAN NOT NULL DEFAULT false,
		is_active BOOLEAN NOT NULL DEFAULT false,
		is_staff BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS experiences (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		organization_name TEXT,
		employee_type VARCHAR(50),
		job_title TEXT,
		currently_working BOOLEAN NOT NULL DEFAULT false,
		start_date DATE NOT NULL,
		end_date DATE,
		work_type VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS qualification_types (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		description TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS qualification_branches (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		qualification_type_id UUID NOT NULL REFERENCES qualification_types(id),
		name TEXT NOT NULL,
		description TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS qualifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		qualification_type_id UUID REFERENCES qualification_types(id),
		qualification_branch_id UUID REFERENCES qualification_branches(id),
		institute_name TEXT NOT NULL,
		board_university TEXT,
		year_of_passing INT NOT NULL,
		percentage_cgpa VARCHAR(20),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id),
		membership_type VARCHAR(50),
		order_id TEXT NOT NULL,
		payment_id TEXT,
		receipt TEXT NOT NULL,
		amount NUMERIC(10,2) NOT NULL,
		currency VARCHAR(5) NOT NULL DEFAULT 'INR',
		status VARCHAR(20) NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id)`,

	`CREATE TABLE IF NOT EXISTS receipt_counters (
		year INT PRIMARY KEY,
		seq INT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS proposers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		membership_no TEXT NOT NULL,
		mobile_no VARCHAR(20),
		email TEXT NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		token UUID UNIQUE NOT NULL,
		expiry_date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proposers_status_expiry ON proposers(status, expiry_date)`,

	`CREATE TABLE IF NOT EXISTS config_settings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT,
		type TEXT UNIQUE NOT NULL,
		approval_prsnt NUMERIC(10,2) NOT NULL,
		heirarchy BOOLEAN NOT NULL DEFAULT false,
		value JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS config_approvers (
		config_id UUID NOT NULL REFERENCES config_settings(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (config_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS approve_memberships (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		applicant_id UUID NOT NULL REFERENCES users(id),
		approved BOOLEAN NOT NULL DEFAULT false,
		rejected BOOLEAN NOT NULL DEFAULT false,
		remark TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_approve_memberships_applicant ON approve_memberships(applicant_id)`,

	`CREATE TABLE IF NOT EXISTS membership_approvers (
		approve_membership_id UUID NOT NULL REFERENCES approve_memberships(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id),
		PRIMARY KEY (approve_membership_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT false,
		delivered BOOLEAN NOT NULL DEFAULT false,
		delivered_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID,
		action VARCHAR(10) NOT NULL,
		model_name TEXT NOT NULL,
		object_id TEXT NOT NULL,
		changes JSONB,
		ip_address TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func addPaymentMembershipTypeColumn(db *sql.DB) error {
	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM information_schema.columns
				WHERE table_name = 'payments'
				AND column_name = 'membership_type'
			) THEN
				ALTER TABLE payments ADD COLUMN membership_type VARCHAR(50);
				RAISE NOTICE 'Added membership_type column to payments';
			END IF;
		END $$;
	`
	_, err := db.Exec(query)
	if err != nil {
		config.Log.Error().Err(err).Msg("Failed to run migration for payments membership_type column")
		return err
	}
	return nil
}
