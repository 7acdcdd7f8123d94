package auth

// Permission constants define the available permissions in the system.
// Each name gates one operation on one resource type.
const (
	// PermBuilderList allows listing and reading builders.
	PermBuilderList = "builder-list"
	// PermBuilderCreate allows creating builders.
	PermBuilderCreate = "builder-create"
	// PermBuilderEdit allows updating builders.
	PermBuilderEdit = "builder-edit"
	// PermBuilderDelete allows deleting builders.
	PermBuilderDelete = "builder-delete"

	// PermPropertyList allows listing and reading properties.
	PermPropertyList = "property-list"
	// PermPropertyCreate allows creating properties.
	PermPropertyCreate = "property-create"
	// PermPropertyEdit allows updating properties.
	PermPropertyEdit = "property-edit"
	// PermPropertyDelete allows deleting properties.
	PermPropertyDelete = "property-delete"

	// PermCategoryList allows listing and reading categories.
	PermCategoryList = "category-list"
	// PermCategoryCreate allows creating categories.
	PermCategoryCreate = "category-create"
	// PermCategoryEdit allows updating categories.
	PermCategoryEdit = "category-edit"
	// PermCategoryDelete allows deleting categories.
	PermCategoryDelete = "category-delete"

	// PermPropertyTypeList allows listing and reading property types.
	PermPropertyTypeList = "property-type-list"
	// PermPropertyTypeCreate allows creating property types.
	PermPropertyTypeCreate = "property-type-create"
	// PermPropertyTypeEdit allows updating property types.
	PermPropertyTypeEdit = "property-type-edit"
	// PermPropertyTypeDelete allows deleting property types.
	PermPropertyTypeDelete = "property-type-delete"

	// PermUserList allows listing and reading users.
	PermUserList = "user-list"
	// PermUserCreate allows creating users.
	PermUserCreate = "user-create"
	// PermUserEdit allows updating users.
	PermUserEdit = "user-edit"
	// PermUserDelete allows deleting users.
	PermUserDelete = "user-delete"

	// PermRoleList allows listing and reading roles and permissions.
	PermRoleList = "role-list"
	// PermRoleCreate allows creating roles.
	PermRoleCreate = "role-create"
	// PermRoleEdit allows updating roles.
	PermRoleEdit = "role-edit"
	// PermRoleDelete allows deleting roles.
	PermRoleDelete = "role-delete"
)

// All lists every permission, in seed order.
var All = []string{
	PermRoleList, PermRoleCreate, PermRoleEdit, PermRoleDelete,
	PermUserList, PermUserCreate, PermUserEdit, PermUserDelete,
	PermBuilderList, PermBuilderCreate, PermBuilderEdit, PermBuilderDelete,
	PermPropertyList, PermPropertyCreate, PermPropertyEdit, PermPropertyDelete,
	PermCategoryList, PermCategoryCreate, PermCategoryEdit, PermCategoryDelete,
	PermPropertyTypeList, PermPropertyTypeCreate, PermPropertyTypeEdit, PermPropertyTypeDelete,
}
