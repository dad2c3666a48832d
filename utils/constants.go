package utils

// RevokedTokenPrefix prefixes the hashes of tokens invalidated by logout.
const RevokedTokenPrefix = "revoked:"

// RankingCacheKey holds the serialized provider ranking.
const RankingCacheKey = "ranking:providers"
