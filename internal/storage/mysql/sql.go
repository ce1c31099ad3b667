package mysql

const insertHotelSQL = `
INSERT INTO hotels
  (id, name, location, price, rooms, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const selectHotelsSQL = `
SELECT id, name, location, price, rooms, created_at, updated_at
FROM hotels
ORDER BY seq
`

const selectHotelSQL = `
SELECT id, name, location, price, rooms, created_at, updated_at
FROM hotels
WHERE id = ?
`

// row lock serializes writers appending to the same hotel's lists
const lockHotelSQL = `SELECT id FROM hotels WHERE id = ? FOR UPDATE`

const touchHotelSQL = `UPDATE hotels SET updated_at = ? WHERE id = ?`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// Note: `comment` is reserved; keep it quoted everywhere.
const insertReviewSQL = "INSERT INTO reviews\n  (id, hotel_id, author, `comment`, rating, created_at, updated_at)\nVALUES\n  (?, ?, ?, ?, ?, ?, ?)"

const selectReviewsPrefix = "SELECT id, hotel_id, author, `comment`, rating, created_at, updated_at\nFROM reviews\nWHERE id IN "

const lockReviewSQL = "SELECT id, hotel_id, author, `comment`, rating, created_at, updated_at\nFROM reviews\nWHERE id = ?\nFOR UPDATE"

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

const deleteHotelReviewsSQL = `DELETE FROM reviews WHERE hotel_id = ?`

const insertRoomTypeSQL = "INSERT INTO room_types\n  (id, `type`, description, price, created_at, updated_at)\nVALUES\n  (?, ?, ?, ?, ?, ?)"

const selectRoomTypeSQL = "SELECT id, `type`, description, price, created_at, updated_at\nFROM room_types\nWHERE id = ?"

const selectRoomTypesPrefix = "SELECT id, `type`, description, price, created_at, updated_at\nFROM room_types\nWHERE id IN "

// -----------------------------------------------------------------------------
// REFERENCE LISTS
// -----------------------------------------------------------------------------

const insertReviewRefSQL = `INSERT INTO hotel_review_refs (hotel_id, review_id) VALUES (?, ?)`

const deleteReviewRefSQL = `DELETE FROM hotel_review_refs WHERE hotel_id = ? AND review_id = ?`

const insertRoomTypeRefSQL = `INSERT INTO hotel_room_type_refs (hotel_id, room_type_id) VALUES (?, ?)`

const selectReviewRefsSQL = `SELECT review_id FROM hotel_review_refs WHERE hotel_id = ? ORDER BY seq`

const selectRoomTypeRefsSQL = `SELECT room_type_id FROM hotel_room_type_refs WHERE hotel_id = ? ORDER BY seq`

const selectAllReviewRefsSQL = `SELECT hotel_id, review_id FROM hotel_review_refs ORDER BY seq`

const selectAllRoomTypeRefsSQL = `SELECT hotel_id, room_type_id FROM hotel_room_type_refs ORDER BY seq`
