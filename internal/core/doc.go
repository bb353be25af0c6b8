// Package core turns a parsed menu export into the rows of the delivery
// platform's import template.
//
// The pipeline runs in fixed order over one mutable row set:
//
//  1. [BuildRows] emits one row per entity plus one BUNDLE row per
//     meal-sequence step.
//  2. [AssignCategories] names the category of every PRODUCT row.
//  3. [NamespaceRows] prefixes each PLU by row kind and returns the reverse
//     [Index] from raw ids to namespaced PLUs.
//  4. [RewriteReferences] re-links Subproducts to the namespaced PLUs legal
//     for each parent, keeping raw ids it cannot resolve.
//  5. [Verify] reports invalid types, duplicate PLUs and dangling references.
//
// Layouts that are not namespaced skip steps 3 and 4. [Converter] runs the
// pipeline; [Service] adds parsing, serialization, concurrency limits and the
// usage counter.
//
// Technical errors are mapped to coded user messages by [MapError].
package core
