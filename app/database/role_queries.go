package database

import (
	"database/sql"

	"github.com/Shekhar17ACS/IETE/app/models"
)

func GetRoleByID(db queryer, roleID string) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, parent_id, group_id, created_at, updated_at FROM roles WHERE id = $1`
	err := db.QueryRow(query, roleID).Scan(&role.ID, &role.Name, &role.ParentID, &role.GroupID,
		&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// GetRoleByName matches case-insensitively; returns (nil, nil) when absent.
func GetRoleByName(db queryer, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, parent_id, group_id, created_at, updated_at
			  FROM roles WHERE LOWER(name) = LOWER($1)`
	err := db.QueryRow(query, name).Scan(&role.ID, &role.Name, &role.ParentID, &role.GroupID,
		&role.CreatedAt, &role.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

func GetAllRoles(db queryer) ([]*models.Role, error) {
	query := `SELECT id, name, parent_id, group_id, created_at, updated_at FROM roles ORDER BY name`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.ParentID, &role.GroupID,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// CreateRole inserts a role and its same-named permission group. The
// group is reused when one with that name already exists.
func CreateRole(db *sql.DB, role *models.Role) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var groupID string
	err = tx.QueryRow(`INSERT INTO groups (name) VALUES ($1)
					   ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
					   RETURNING id`, role.Name).Scan(&groupID)
	if err != nil {
		return err
	}
	role.GroupID = &groupID

	err = tx.QueryRow(`INSERT INTO roles (name, parent_id, group_id) VALUES ($1, $2, $3)
					   RETURNING id, created_at, updated_at`,
		role.Name, role.ParentID, role.GroupID).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func UpdateRole(db *sql.DB, role *models.Role) error {
	_, err := db.Exec(`UPDATE roles SET name = $1, parent_id = $2, updated_at = NOW() WHERE id = $3`,
		role.Name, role.ParentID, role.ID)
	return err
}

func DeleteRole(db *sql.DB, roleID string) error {
	_, err := db.Exec(`DELETE FROM roles WHERE id = $1`, roleID)
	return err
}

// RoleInUse reports whether any user currently holds the role.
func RoleInUse(db *sql.DB, roleID string) (bool, error) {
	var inUse bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE role_id = $1)`, roleID).Scan(&inUse)
	return inUse, err
}
