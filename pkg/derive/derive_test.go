package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/numderive/internal/models"
)

var vector = TypeDescriptor{
	Name:       "Vector",
	TypeParams: []TypeParam{{Names: []string{"T"}, Constraint: "~int32 | ~int64"}},
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"Add", "Sub", "Mul", "Div", "Rem", "BitXor", "BitAnd", "BitOr", "Shl", "Shr",
		"FromSigned", "FromUnsigned", "EqSigned", "EqUnsigned", "FromBytes",
	}, Names())
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			ep, ok := Lookup(name)
			require.True(t, ok)
			assert.Equal(t, name, ep.Name)

			decls, err := ep.Generate(vector)
			require.NoError(t, err)
			require.NotEmpty(t, decls)
			for _, decl := range decls {
				assert.Equal(t, name, decl.Entry)
				assert.Equal(t, ep.Family, decl.Family)
			}
		})
	}

	_, ok := Lookup("add")
	assert.False(t, ok, "directive names are case sensitive")
	_, ok = Lookup("Neg")
	assert.False(t, ok)
}

func TestEntryPointsReturnsCopy(t *testing.T) {
	eps := EntryPoints()
	eps[0].Name = "Mutated"
	assert.Equal(t, "Add", Names()[0])
}

func TestOperatorEntryPoints(t *testing.T) {
	tests := []struct {
		fn   Func
		name string
	}{
		{Add, "Add"}, {Sub, "Sub"}, {Mul, "Mul"}, {Div, "Div"}, {Rem, "Rem"},
		{BitXor, "BitXor"}, {BitAnd, "BitAnd"}, {BitOr, "BitOr"}, {Shl, "Shl"}, {Shr, "Shr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, err := tt.fn(vector)
			require.NoError(t, err)
			require.Len(t, decls, 1)
			assert.Equal(t, tt.name, decls[0].Name)
			assert.Equal(t, models.FamilyOperator, decls[0].Family)
		})
	}
}

func TestWideningEntryPoints(t *testing.T) {
	decls, err := FromSigned(vector)
	require.NoError(t, err)
	assert.Equal(t, []string{"VectorFromInt8", "VectorFromInt16", "VectorFromInt32"}, declNames(decls))

	decls, err = FromUnsigned(vector)
	require.NoError(t, err)
	assert.Equal(t, []string{"VectorFromUint8", "VectorFromUint16", "VectorFromUint32"}, declNames(decls))

	decls, err = EqSigned(vector)
	require.NoError(t, err)
	assert.Equal(t, []string{"EqualInt8", "EqualInt16", "EqualInt32"}, declNames(decls))

	decls, err = EqUnsigned(vector)
	require.NoError(t, err)
	assert.Equal(t, []string{"EqualUint8", "EqualUint16", "EqualUint32"}, declNames(decls))

	decls, err = FromBytes(vector)
	require.NoError(t, err)
	assert.Equal(t, []string{"VectorFromBytes"}, declNames(decls))
}

func TestOptions(t *testing.T) {
	decls, err := Mul(TypeDescriptor{Name: "Mask"}, WithValueCopy())
	require.NoError(t, err)
	src, err := decls[0].Source()
	require.NoError(t, err)
	assert.Contains(t, src, "ret := m\n")

	decls, err = Mul(TypeDescriptor{Name: "Mask"}, WithNative())
	require.NoError(t, err)
	src, err = decls[0].Source()
	require.NoError(t, err)
	assert.Contains(t, src, "ret *= rhs")

	decls, err = Mul(TypeDescriptor{Name: "Mask"}, WithClone("Dup"))
	require.NoError(t, err)
	src, err = decls[0].Source()
	require.NoError(t, err)
	assert.Contains(t, src, "ret := m.Dup()")

	decls, err = FromSigned(TypeDescriptor{Name: "Mask"}, WithConventions(Conventions{Constructor: "Make{type}{kind}"}))
	require.NoError(t, err)
	assert.Equal(t, "MakeMaskInt8", decls[0].Name)
}

func TestFailureProducesNoDeclarations(t *testing.T) {
	broken := TypeDescriptor{Name: "T", TypeParams: []TypeParam{{Names: []string{"int32"}, Constraint: "any"}}}

	decls, err := FromSigned(broken)
	assert.Error(t, err)
	assert.Nil(t, decls)

	decls, err = EqUnsigned(TypeDescriptor{Name: "T"}, WithConventions(Conventions{Equal: "Eq"}))
	assert.Error(t, err)
	assert.Nil(t, decls)
}

func TestRecipesComposeAdditively(t *testing.T) {
	seen := make(map[string]string)
	for _, ep := range EntryPoints() {
		decls, err := ep.Generate(vector)
		require.NoError(t, err)
		for _, decl := range decls {
			prev, dup := seen[decl.Name]
			assert.False(t, dup, "%s generated by both %s and %s", decl.Name, prev, ep.Name)
			seen[decl.Name] = ep.Name
		}
	}
	assert.Len(t, seen, 10+3*4+1)
}

func declNames(decls []Declaration) []string {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	return names
}
