package hashtable

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/skybi/chaincache/internal/hasher"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
)

// checkInvariants verifies the structural invariants of table
func checkInvariants[K comparable, V any](t *testing.T, table *Table[K, V]) {
	t.Helper()
	total := 0
	for i := range table.buckets {
		b := &table.buckets[i]
		n := 0
		var last *Entry[K, V]
		for entry := b.head; entry != nil; entry = entry.next {
			n++
			last = entry
			if idx := int(entry.hash % uint64(len(table.buckets))); idx != i {
				t.Fatalf("entry %v lives in bucket %d but belongs to bucket %d", entry.key, i, idx)
			}
			if !entry.linked {
				t.Fatalf("entry %v is reachable but not marked as linked", entry.key)
			}
		}
		if n != b.count {
			t.Fatalf("bucket %d: chain length %d != count %d", i, n, b.count)
		}
		if last != b.tail {
			t.Fatalf("bucket %d: tail does not point to the last entry", i)
		}
		total += b.count
	}
	if total != table.count {
		t.Fatalf("sum of bucket counts %d != element count %d", total, table.count)
	}
}

func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic with %q, got %v", target, r)
		}
	}()
	fn()
}

// constantHasher maps every key to the same hash code
func constantHasher[K any](hash uint64) hasher.Hasher[K] {
	return hasher.Func[K](func(K) uint64 {
		return hash
	})
}

// identityHasher uses integer keys as their own hash code
var identityHasher = hasher.Func[int](func(key int) uint64 {
	return uint64(key)
})

func TestTable_ZeroValue(t *testing.T) {
	var table Table[string, int]
	if table.BucketCount() != 0 {
		t.Fatalf("BucketCount() = %d, want 0", table.BucketCount())
	}
	if lf := table.LoadFactor(); lf != InvalidLoadFactor {
		t.Fatalf("LoadFactor() = %v, want %v", lf, InvalidLoadFactor)
	}
	if table.Find("missing") != nil {
		t.Fatal("Find on an empty table returned an entry")
	}
	if _, removed := table.Remove("missing"); removed {
		t.Fatal("Remove on an empty table reported a removal")
	}
	if table.BucketIndex("missing") != -1 {
		t.Fatal("BucketIndex without buckets must be -1")
	}

	if _, inserted := table.Emplace("a", 1); !inserted {
		t.Fatal("Emplace into an empty table did not insert")
	}
	if table.BucketCount() != 2 {
		t.Fatalf("first insertion allocated %d buckets, want 2", table.BucketCount())
	}
	if got := table.At("a"); got != 1 {
		t.Fatalf("At(a) = %d, want 1", got)
	}
	checkInvariants(t, &table)
}

func TestTable_New(t *testing.T) {
	if n := New[int, int]().BucketCount(); n != 0 {
		t.Errorf("New(): %d buckets, want 0", n)
	}
	if n := New[int, int](WithBuckets(-5)).BucketCount(); n != 0 {
		t.Errorf("WithBuckets(-5): %d buckets, want 0", n)
	}
	table := New[int, int](WithBuckets(8))
	if table.BucketCount() != 8 {
		t.Errorf("WithBuckets(8): %d buckets, want 8", table.BucketCount())
	}
	if table.LoadFactor() != 0 {
		t.Errorf("LoadFactor() = %v, want 0", table.LoadFactor())
	}
}

func TestTable_WithHasherMismatch(t *testing.T) {
	mustPanicWith(t, ErrHasherMismatch, func() {
		New[int, int](WithHasher[string](hasher.String[string]{}))
	})
}

func TestTable_RoundTrip(t *testing.T) {
	table := New[string, int]()
	for i := 0; i < 100; i++ {
		table.Emplace(strconv.Itoa(i), i*10)
	}
	for i := 0; i < 100; i++ {
		entry := table.Find(strconv.Itoa(i))
		if entry == nil {
			t.Fatalf("key %d not found", i)
		}
		if entry.Value != i*10 || entry.Key() != strconv.Itoa(i) {
			t.Fatalf("key %d: got %s=%d", i, entry.Key(), entry.Value)
		}
		if entry.Hash() != table.HashOf(entry.Key()) {
			t.Fatalf("key %d: cached hash differs from the computed one", i)
		}
	}
	if table.Size() != 100 {
		t.Fatalf("Size() = %d, want 100", table.Size())
	}
	checkInvariants(t, table)
}

func TestTable_EmplaceDoesNotOverwrite(t *testing.T) {
	table := New[string, string]()
	first, inserted := table.Emplace("k", "v1")
	if !inserted {
		t.Fatal("first Emplace did not insert")
	}
	second, inserted := table.Emplace("k", "v2")
	if inserted {
		t.Fatal("second Emplace reported an insertion")
	}
	if first != second {
		t.Fatal("second Emplace did not return the existing entry")
	}
	if got, _ := table.Get("k"); got != "v1" {
		t.Fatalf("value = %q, want v1", got)
	}
	if table.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", table.Size())
	}
}

func TestTable_EmplaceOrAssignOverwrites(t *testing.T) {
	table := New[string, string]()
	first, _ := table.Emplace("k", "v1")
	hash := first.Hash()
	second, inserted := table.EmplaceOrAssign("k", "v2")
	if inserted {
		t.Fatal("EmplaceOrAssign on an existing key reported an insertion")
	}
	if first != second {
		t.Fatal("EmplaceOrAssign did not update the entry in place")
	}
	if second.Value != "v2" || second.Key() != "k" || second.Hash() != hash {
		t.Fatalf("entry after overwrite: %s=%s (hash %#x, want %#x)", second.Key(), second.Value, second.Hash(), hash)
	}

	if _, inserted := table.EmplaceOrAssign("other", "v3"); !inserted {
		t.Fatal("EmplaceOrAssign on a new key did not insert")
	}
	if table.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", table.Size())
	}
}

func TestTable_InsertPairs(t *testing.T) {
	table := New[string, int]()
	table.Insert(Pair[string, int]{"a", 1})
	table.Insert(Pair[string, int]{"a", 2})
	if table.At("a") != 1 {
		t.Fatalf("Insert overwrote an existing value")
	}
	table.InsertOrAssign(Pair[string, int]{"a", 3})
	if table.At("a") != 3 {
		t.Fatalf("InsertOrAssign did not overwrite the existing value")
	}
}

func TestTable_Remove(t *testing.T) {
	table := New[int, int]()
	for i := 0; i < 50; i++ {
		table.Emplace(i, i)
	}
	buckets := table.BucketCount()
	for i := 0; i < 50; i += 2 {
		before := table.Size()
		if _, removed := table.Remove(i); !removed {
			t.Fatalf("Remove(%d) did not remove", i)
		}
		if table.Find(i) != nil {
			t.Fatalf("key %d still found after removal", i)
		}
		if table.Size() != before-1 {
			t.Fatalf("Size() = %d after removal, want %d", table.Size(), before-1)
		}
		checkInvariants(t, table)
	}
	if _, removed := table.Remove(0); removed {
		t.Fatal("removing a missing key reported a removal")
	}
	if table.BucketCount() != buckets {
		t.Fatalf("removal changed the bucket count from %d to %d", buckets, table.BucketCount())
	}
	for i := 1; i < 50; i += 2 {
		if !table.Contains(i) {
			t.Fatalf("key %d lost", i)
		}
	}
}

func TestTable_RemoveHeadMiddleTail(t *testing.T) {
	for _, victim := range []int{1, 9, 17} {
		t.Run(strconv.Itoa(victim), func(t *testing.T) {
			table := New[int, string](WithBuckets(8), WithHasher[int](identityHasher))
			for _, k := range []int{1, 9, 17} {
				table.Emplace(k, strconv.Itoa(k))
			}
			next, removed := table.Remove(victim)
			if !removed {
				t.Fatalf("Remove(%d) did not remove", victim)
			}
			checkInvariants(t, table)

			var rest []int
			for cursor := next; !cursor.IsEnd(); cursor.Next() {
				rest = append(rest, cursor.Key())
			}
			want := map[int][]int{1: {9, 17}, 9: {17}, 17: nil}[victim]
			if diff := cmp.Diff(want, rest); diff != "" {
				t.Fatalf("entries after the returned cursor (-want +got):\n%s", diff)
			}

			// the chain must stay appendable at its (possibly new) tail
			table.Emplace(25, "25")
			checkInvariants(t, table)
		})
	}
}

func TestTable_GrowthScenario(t *testing.T) {
	table := New[string, int](WithBuckets(8))
	for i := 0; i < 6; i++ {
		table.Emplace(fmt.Sprintf("key-%d", i), i)
	}
	if table.BucketCount() != 8 {
		t.Fatalf("6 keys in 8 buckets triggered a rehash (%d buckets)", table.BucketCount())
	}
	table.Emplace("key-6", 6)
	if table.BucketCount() < 10 {
		t.Fatalf("7th key: %d buckets, want at least 10", table.BucketCount())
	}
	if table.BucketCount() != 10 {
		t.Fatalf("7th key: %d buckets, want 7/0.75+1 = 10", table.BucketCount())
	}
	for i := 0; i < 7; i++ {
		if got, ok := table.Get(fmt.Sprintf("key-%d", i)); !ok || got != i {
			t.Fatalf("key-%d: got %d, %v", i, got, ok)
		}
	}
	if table.Stats().Growths != 1 {
		t.Fatalf("Growths = %d, want 1", table.Stats().Growths)
	}
	checkInvariants(t, table)
}

func TestTable_LoadFactorBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	table := New[int, int]()
	present := make(map[int]int)
	for i := 0; i < 5000; i++ {
		key := rng.IntN(800)
		switch rng.IntN(3) {
		case 0:
			_, inserted := table.Emplace(key, i)
			if _, ok := present[key]; ok == inserted {
				t.Fatalf("Emplace(%d): inserted=%v although present=%v", key, inserted, ok)
			}
			if inserted {
				present[key] = i
			}
			if table.LoadFactor() > MaxLoadFactor {
				t.Fatalf("load factor %v exceeds %v after insertion", table.LoadFactor(), MaxLoadFactor)
			}
		case 1:
			table.EmplaceOrAssign(key, i)
			present[key] = i
			if table.LoadFactor() > MaxLoadFactor {
				t.Fatalf("load factor %v exceeds %v after insertion", table.LoadFactor(), MaxLoadFactor)
			}
		default:
			_, removed := table.Remove(key)
			if _, ok := present[key]; ok != removed {
				t.Fatalf("Remove(%d): removed=%v although present=%v", key, removed, ok)
			}
			delete(present, key)
		}
		if i%100 == 0 {
			checkInvariants(t, table)
		}
	}
	checkInvariants(t, table)
	if table.Size() != len(present) {
		t.Fatalf("Size() = %d, want %d", table.Size(), len(present))
	}
	for key, value := range present {
		if got, ok := table.Get(key); !ok || got != value {
			t.Fatalf("Get(%d) = %d, %v; want %d", key, got, ok, value)
		}
	}
}

func TestTable_Collisions(t *testing.T) {
	table := New[string, int](WithHasher[string](constantHasher[string](42)))
	if _, inserted := table.Emplace("a", 1); !inserted {
		t.Fatal("Emplace(a) did not insert")
	}
	// distinct keys with the same hash code are distinct entries
	if _, inserted := table.Emplace("b", 2); !inserted {
		t.Fatal("Emplace(b) was rejected as a duplicate of a colliding key")
	}
	table.EmplaceOrAssign("c", 3)
	if table.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", table.Size())
	}
	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if got := table.At(key); got != want {
			t.Fatalf("At(%s) = %d, want %d", key, got, want)
		}
	}
	checkInvariants(t, table)

	// hash based operations keep hash identity semantics
	if entry := table.FindByHash(42); entry == nil || entry.Key() != "a" {
		t.Fatalf("FindByHash(42) did not return the first entry of the chain")
	}
	if entry, inserted := table.EmplaceByHash(42, "d", 4); inserted || entry.Key() != "a" {
		t.Fatalf("EmplaceByHash with a present hash code inserted a new entry")
	}
	if !table.ContainsByHash(42) || table.ContainsByHash(7) {
		t.Fatal("ContainsByHash reported wrong results")
	}
	if _, removed := table.RemoveByHash(42); !removed {
		t.Fatal("RemoveByHash(42) did not remove")
	}
	if table.Contains("a") || !table.Contains("b") || !table.Contains("c") {
		t.Fatal("RemoveByHash removed the wrong entry")
	}
	checkInvariants(t, table)
}

func TestTable_EmplaceByHashOfKey(t *testing.T) {
	table := New[string, int]()
	if _, inserted := table.EmplaceByHash(table.HashOf("a"), "a", 1); !inserted {
		t.Fatal("EmplaceByHash did not insert into an empty table")
	}
	if entry, inserted := table.Emplace("a", 2); inserted || entry.Value != 1 {
		t.Fatal("Emplace missed an entry stored with HashOf(key)")
	}
	if entry := table.Find("a"); entry == nil || entry.Hash() != table.HashOf("a") {
		t.Fatal("Find did not return the entry stored by hash")
	}
	checkInvariants(t, table)
}

func TestTable_SignedZeroKeys(t *testing.T) {
	table := New[float64, int]()
	table.Emplace(0, 1)
	negZero := math.Copysign(0, -1)
	if entry, inserted := table.Emplace(negZero, 2); inserted || entry.Value != 1 {
		t.Fatal("-0.0 was stored next to the equal key +0.0")
	}
	if table.Size() != 1 || !table.Contains(negZero) {
		t.Fatalf("Size() = %d, Contains(-0.0) = %v", table.Size(), table.Contains(negZero))
	}
	table.EmplaceOrAssign(negZero, 3)
	if table.At(0) != 3 {
		t.Fatalf("At(0) = %d, want 3", table.At(0))
	}
	if _, removed := table.Remove(negZero); !removed || !table.IsEmpty() {
		t.Fatal("Remove(-0.0) did not remove the +0.0 entry")
	}
	checkInvariants(t, table)
}

func TestTable_Rehash(t *testing.T) {
	table := New[int, int]()
	for i := 0; i < 30; i++ {
		table.Emplace(i, i)
	}
	buckets := table.BucketCount()
	table.Rehash(buckets)
	table.Rehash(1)
	if table.BucketCount() != buckets {
		t.Fatalf("Rehash with a smaller count changed the bucket count to %d", table.BucketCount())
	}

	entry := table.Find(7)
	cursor := table.Begin()
	table.Rehash(100)
	if table.BucketCount() != 100 {
		t.Fatalf("Rehash(100): %d buckets", table.BucketCount())
	}
	if cursor.Valid() {
		t.Fatal("cursor still valid after rehash")
	}
	if table.Find(7) != entry || !entry.Linked() {
		t.Fatal("rehash did not relink the original entry")
	}
	for i := 0; i < 30; i++ {
		if table.At(i) != i {
			t.Fatalf("key %d lost by rehash", i)
		}
	}
	checkInvariants(t, table)
}

func TestTable_InsertAll(t *testing.T) {
	pairs := make([]Pair[int, string], 100)
	for i := range pairs {
		pairs[i] = Pair[int, string]{i, strconv.Itoa(i)}
	}
	table := New[int, string]()
	if n := table.InsertAll(pairs...); n != 100 {
		t.Fatalf("InsertAll inserted %d pairs, want 100", n)
	}
	if table.Stats().Growths != 1 {
		t.Fatalf("InsertAll grew %d times, want 1", table.Stats().Growths)
	}
	if n := table.InsertAll(Pair[int, string]{1, "x"}, Pair[int, string]{100, "y"}); n != 1 {
		t.Fatalf("InsertAll with one new key inserted %d", n)
	}
	if table.At(1) != "1" {
		t.Fatal("InsertAll overwrote an existing value")
	}
	if n := table.InsertOrAssignAll(Pair[int, string]{1, "x"}, Pair[int, string]{101, "z"}); n != 1 {
		t.Fatalf("InsertOrAssignAll with one new key inserted %d", n)
	}
	if table.At(1) != "x" || table.At(101) != "z" {
		t.Fatal("InsertOrAssignAll did not assign all values")
	}
	if table.InsertAll() != 0 {
		t.Fatal("InsertAll without pairs inserted something")
	}
	checkInvariants(t, table)
}

func TestNewFrom(t *testing.T) {
	small := NewFrom([]Pair[string, int]{{"a", 1}, {"b", 2}, {"a", 3}})
	if small.BucketCount() != InitialBuckets {
		t.Fatalf("small table: %d buckets, want %d", small.BucketCount(), InitialBuckets)
	}
	if small.Size() != 2 || small.At("a") != 1 {
		t.Fatalf("duplicates were not ignored: size=%d a=%d", small.Size(), small.At("a"))
	}

	pairs := make([]Pair[string, int], 10)
	for i := range pairs {
		pairs[i] = Pair[string, int]{strconv.Itoa(i), i}
	}
	large := NewFrom(pairs)
	if large.BucketCount() != 14 {
		t.Fatalf("large table: %d buckets, want 10/0.75+1 = 14", large.BucketCount())
	}
	if large.Stats().Growths != 0 {
		t.Fatal("pre-sized table grew while being filled")
	}
	checkInvariants(t, large)
}

func TestTable_IndexAndAt(t *testing.T) {
	table := New[string, int]()
	*table.Index("counter") += 5
	*table.Index("counter") += 5
	if table.At("counter") != 10 {
		t.Fatalf("counter = %d, want 10", table.At("counter"))
	}
	if table.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", table.Size())
	}
	mustPanicWith(t, ErrKeyNotFound, func() {
		table.At("missing")
	})
}

func TestTable_ClearAndRelease(t *testing.T) {
	table := New[int, int]()
	for i := 0; i < 20; i++ {
		table.Emplace(i, i)
	}
	entry := table.Find(3)
	buckets := table.BucketCount()

	table.Clear()
	if table.Size() != 0 || table.BucketCount() != buckets {
		t.Fatalf("Clear: size=%d buckets=%d, want 0/%d", table.Size(), table.BucketCount(), buckets)
	}
	if entry.Linked() {
		t.Fatal("entry still linked after Clear")
	}
	if !table.Begin().Equal(table.End()) {
		t.Fatal("cleared table is not empty")
	}
	checkInvariants(t, table)

	table.Emplace(1, 1)
	table.Release()
	if table.BucketCount() != 0 || table.LoadFactor() != InvalidLoadFactor {
		t.Fatalf("Release: %d buckets, load factor %v", table.BucketCount(), table.LoadFactor())
	}
	table.Emplace(2, 2)
	if table.BucketCount() != 2 {
		t.Fatalf("released table re-initialized with %d buckets, want 2", table.BucketCount())
	}
}

func TestTable_CloneAndEqual(t *testing.T) {
	table := New[string, int]()
	for i := 0; i < 40; i++ {
		table.Emplace(strconv.Itoa(i), i)
	}
	clone := table.Clone()
	if !Equal(table, clone) {
		t.Fatal("clone is not equal to the original")
	}
	if clone.BucketCount() != table.BucketCount() {
		t.Fatalf("clone has %d buckets, want %d", clone.BucketCount(), table.BucketCount())
	}
	checkInvariants(t, clone)

	var original, cloned []string
	for key := range table.Keys() {
		original = append(original, key)
	}
	for key := range clone.Keys() {
		cloned = append(cloned, key)
	}
	if diff := cmp.Diff(original, cloned); diff != "" {
		t.Fatalf("clone iteration order differs (-original +clone):\n%s", diff)
	}

	clone.EmplaceOrAssign("0", -1)
	if table.At("0") != 0 {
		t.Fatal("modifying the clone modified the original")
	}
	if Equal(table, clone) {
		t.Fatal("tables with different values are equal")
	}
	clone.EmplaceOrAssign("0", 0)
	clone.Emplace("extra", 1)
	if Equal(table, clone) {
		t.Fatal("tables with different sizes are equal")
	}

	// equality does not depend on the bucket layout
	other := New[string, int](WithBuckets(500))
	for key, value := range table.All() {
		other.Emplace(key, value)
	}
	if !Equal(table, other) {
		t.Fatal("tables with equal contents but different bucket counts are not equal")
	}
	asStrings := New[string, string]()
	for key, value := range table.All() {
		asStrings.Emplace(key, strconv.Itoa(value))
	}
	if !EqualFunc(table, asStrings, func(v int, s string) bool { return strconv.Itoa(v) == s }) {
		t.Fatal("EqualFunc did not use the given comparison")
	}
}

func TestTable_RehashHookAndLogger(t *testing.T) {
	var buf bytes.Buffer
	var rehashes [][2]int
	table := New[int, int](
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
		WithRehashHook(func(from, to int) {
			rehashes = append(rehashes, [2]int{from, to})
		}),
	)
	for i := 0; i < 3; i++ {
		table.Emplace(i, i)
	}
	want := [][2]int{{0, 2}, {2, 3}, {3, 5}}
	if diff := cmp.Diff(want, rehashes); diff != "" {
		t.Fatalf("rehash hook calls (-want +got):\n%s", diff)
	}
	if got := strings.Count(buf.String(), "rehashed hash table"); got != 3 {
		t.Fatalf("logged %d rehash events, want 3:\n%s", got, buf.String())
	}
}

func TestTable_Stats(t *testing.T) {
	table := New[int, int](WithBuckets(8), WithHasher[int](identityHasher))
	for _, k := range []int{1, 9, 2} {
		table.Emplace(k, k)
	}
	want := Stats{
		Buckets:      8,
		EmptyBuckets: 6,
		Size:         3,
		MinChain:     0,
		MaxChain:     2,
		LoadFactor:   3.0 / 8.0,
		Growths:      0,
	}
	if diff := cmp.Diff(want, table.Stats()); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Stats{LoadFactor: InvalidLoadFactor}, New[int, int]().Stats()); diff != "" {
		t.Fatalf("unexpected stats of an empty table (-want +got):\n%s", diff)
	}
}

func BenchmarkTable_Emplace(b *testing.B) {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table := New[string, int]()
		for j, key := range keys {
			table.Emplace(key, j)
		}
	}
}

func BenchmarkTable_Find(b *testing.B) {
	table := New[int, int]()
	for i := 0; i < 1<<16; i++ {
		table.Emplace(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = table.Find(i & (1<<16 - 1))
	}
}
