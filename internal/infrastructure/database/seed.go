package database

import (
	"errors"
	"strings"

	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminSeed describes the optional super admin created at start-up
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// userPermissions are granted to self-registered accounts
var userPermissions = []string{
	entity.PermissionManageInvoices,
	entity.PermissionManageClients,
	entity.PermissionManageSettings,
	entity.PermissionViewDashboard,
}

// SeedDefaultData creates permissions, the admin and user roles and, when
// admin credentials are given, the admin account. It is safe to run repeatedly.
func SeedDefaultData(db *gorm.DB, admin AdminSeed, log *zap.Logger) error {
	log.Info("seeding default data")

	for _, name := range entity.AllPermissions {
		perm := entity.Permission{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			return err
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}

	if _, err := ensureRole(db, entity.RoleAdmin, allPermissions); err != nil {
		return err
	}
	if _, err := ensureRole(db, entity.RoleUser, pickPermissions(allPermissions, userPermissions)); err != nil {
		return err
	}

	if admin.Email != "" && admin.Password != "" {
		if err := ensureAdmin(db, admin, log); err != nil {
			return err
		}
	}

	log.Info("default data seeding completed")
	return nil
}

func ensureRole(db *gorm.DB, name string, perms []entity.Permission) (*entity.Role, error) {
	var role entity.Role
	err := db.Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = entity.Role{Name: name, Permissions: perms}
	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func pickPermissions(all []entity.Permission, names []string) []entity.Permission {
	out := make([]entity.Permission, 0, len(names))
	for _, name := range names {
		for _, p := range all {
			if p.Name == name {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func ensureAdmin(db *gorm.DB, admin AdminSeed, log *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Info("admin user already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Admin"
	}
	firstName, lastName, _ := strings.Cut(name, " ")

	user := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hashed,
		Roles:     []entity.Role{adminRole},
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	settings := entity.DefaultBusinessSettings(user.ID)
	if err := db.Create(settings).Error; err != nil {
		return err
	}

	log.Info("admin user created", zap.String("email", email))
	return nil
}
